package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/store"
)

const (
	statsCacheTTL   = 30 * time.Second
	topCompanyCount = 10
)

// StatsService serves the committee dashboard aggregates. Dashboard totals
// are cached in the KV store with a short TTL; everything else is computed
// per request.
type StatsService struct {
	repos Repos
	kv    store.KV
}

type DashboardStats struct {
	TotalCompanies     int              `json:"total_companies"`
	DangerousCompanies int              `json:"dangerous_companies"`
	ActivePenalties    int              `json:"active_penalties"`
	TopCompanies       []domain.Company `json:"top_companies"`
}

func (s *StatsService) Dashboard(ctx context.Context) (DashboardStats, error) {
	const key = "dashboard:stats"
	if s.kv != nil {
		if cached, ok, err := s.kv.Get(ctx, key); err == nil && ok {
			var out DashboardStats
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	var out DashboardStats
	var err error
	if out.TotalCompanies, err = s.repos.Companies.Count(ctx); err != nil {
		return out, err
	}
	if out.DangerousCompanies, err = s.repos.Companies.CountDangerous(ctx); err != nil {
		return out, err
	}
	if out.ActivePenalties, err = s.repos.Penalties.CountActive(ctx); err != nil {
		return out, err
	}
	if out.TopCompanies, err = s.repos.Companies.TopByReading(ctx, topCompanyCount); err != nil {
		return out, err
	}

	if s.kv != nil {
		buf, _ := json.Marshal(out)
		if err := s.kv.Set(ctx, key, string(buf), statsCacheTTL); err != nil {
			log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return out, nil
}

// StatusBreakdown is the good/moderate/bad distribution.
type StatusBreakdown struct {
	Status domain.Status `json:"status"`
	Count  int           `json:"count"`
}

// TrendPoint is one month of the status trend: how many companies carried
// each status among those created up to the month's end.
type TrendPoint struct {
	Label    string `json:"label"`
	Good     int    `json:"good_count"`
	Moderate int    `json:"moderate_count"`
	Bad      int    `json:"bad_count"`
}

type ReportData struct {
	ByStatus     []StatusBreakdown          `json:"by_status"`
	MonthlyTrend []TrendPoint               `json:"monthly_trend"`
	ByIndustry   []repository.IndustryCount `json:"by_industry"`
	ByRegion     []repository.RegionCount   `json:"by_region"`
	Stats        DashboardStats             `json:"stats"`
}

func (s *StatsService) Report(ctx context.Context, year int) (ReportData, error) {
	var out ReportData

	counts, err := s.repos.Companies.StatusCounts(ctx)
	if err != nil {
		return out, err
	}
	for _, st := range []domain.Status{domain.StatusGood, domain.StatusModerate, domain.StatusBad} {
		out.ByStatus = append(out.ByStatus, StatusBreakdown{Status: st, Count: counts[st]})
	}

	for m := time.January; m <= time.December; m++ {
		end := monthEnd(year, m)
		asOf, err := s.repos.Companies.StatusCountsAsOf(ctx, end)
		if err != nil {
			return out, err
		}
		out.MonthlyTrend = append(out.MonthlyTrend, TrendPoint{
			Label:    fmt.Sprintf("%d-%02d", year, m),
			Good:     asOf[domain.StatusGood],
			Moderate: asOf[domain.StatusModerate],
			Bad:      asOf[domain.StatusBad],
		})
	}

	if out.ByIndustry, err = s.repos.Regions.CompanyCountsByIndustry(ctx); err != nil {
		return out, err
	}
	if out.ByRegion, err = s.repos.Regions.CompanyCountsByRegion(ctx); err != nil {
		return out, err
	}
	if out.Stats, err = s.Dashboard(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// monthEnd returns the last instant of the month in UTC.
func monthEnd(year int, m time.Month) time.Time {
	return time.Date(year, m+1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
}
