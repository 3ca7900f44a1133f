package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/report"
	"github.com/ecowatch/emission-monitor/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService assembles compliance workbooks. It only reads computed
// entities; no penalty math happens here.
type ReportService struct {
	repos    Repos
	uploader Uploader
}

// Period selects the reporting window.
type Period struct {
	Type    string // monthly, quarterly, yearly
	Year    int
	Month   time.Month // monthly only
	Quarter int        // quarterly only
}

func (p Period) window() (start, end time.Time, label string, err error) {
	switch p.Type {
	case "monthly":
		if p.Month < time.January || p.Month > time.December {
			return start, end, "", invalid("month is required for a monthly report")
		}
		start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		end = monthEnd(p.Year, p.Month)
		label = fmt.Sprintf("%d-%02d", p.Year, p.Month)
	case "quarterly":
		if p.Quarter < 1 || p.Quarter > 4 {
			return start, end, "", invalid("quarter must be between 1 and 4")
		}
		first := time.Month((p.Quarter-1)*3 + 1)
		start = time.Date(p.Year, first, 1, 0, 0, 0, 0, time.UTC)
		end = monthEnd(p.Year, first+2)
		label = fmt.Sprintf("%d-Q%d", p.Year, p.Quarter)
	case "yearly":
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = monthEnd(p.Year, time.December)
		label = fmt.Sprintf("%d", p.Year)
	default:
		return start, end, "", invalid("unknown report type %q", p.Type)
	}
	return start, end, label, nil
}

// Generate builds the workbook for the period and returns its filename
// and xlsx bytes.
func (s *ReportService) Generate(ctx context.Context, p Period) (string, []byte, error) {
	start, end, label, err := p.window()
	if err != nil {
		return "", nil, err
	}

	wb := report.Workbook{
		Period:      label,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04"),
	}
	if wb.TotalCompanies, err = s.repos.Companies.Count(ctx); err != nil {
		return "", nil, err
	}
	if wb.DangerousCompanies, err = s.repos.Companies.CountDangerous(ctx); err != nil {
		return "", nil, err
	}
	if wb.ActivePenalties, err = s.repos.Penalties.CountActive(ctx); err != nil {
		return "", nil, err
	}

	regions, err := s.repos.Regions.ListRegions(ctx)
	if err != nil {
		return "", nil, err
	}
	regionNames := map[int64]string{}
	for _, r := range regions {
		regionNames[r.ID] = r.Name
	}
	industries, err := s.repos.Regions.ListIndustryTypes(ctx)
	if err != nil {
		return "", nil, err
	}
	industryNames := map[int64]string{}
	for _, it := range industries {
		industryNames[it.ID] = it.Name
	}

	companies, _, err := s.repos.Companies.List(ctx, repository.CompanyFilters{}, 1, 10000)
	if err != nil {
		return "", nil, err
	}
	companyNames := map[int64]string{}
	for _, c := range companies {
		companyNames[c.ID] = c.Name
		wb.Companies = append(wb.Companies, report.CompanyRow{
			ID:           c.ID,
			Name:         c.Name,
			Registration: c.Registration,
			Region:       regionNames[c.RegionID],
			Industry:     industryNames[c.IndustryTypeID],
			MaxAllowed:   c.MaxAllowed,
			Current:      c.CurrentAmount,
			Status:       string(c.Status),
			SensorActive: c.SensorActive,
			CreatedAt:    c.CreatedAt.Format("02.01.2006 15:04"),
		})
	}

	penalties, err := s.repos.Penalties.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return "", nil, err
	}
	for _, p := range penalties {
		wb.Penalties = append(wb.Penalties, report.PenaltyRow{
			Number:        p.Number,
			Company:       companyNames[p.CompanyID],
			ExcessAmount:  p.ExcessAmount.StringFixed(3),
			TreesRequired: p.TreesRequired,
			Status:        string(p.Status),
			Deadline:      p.Deadline.Format("02.01.2006"),
			CreatedAt:     p.CreatedAt.Format("02.01.2006 15:04"),
		})
	}

	for m := time.January; m <= time.December; m++ {
		asOf, err := s.repos.Companies.StatusCountsAsOf(ctx, monthEnd(p.Year, m))
		if err != nil {
			return "", nil, err
		}
		wb.Trend = append(wb.Trend, report.TrendRow{
			Month:          fmt.Sprintf("%d-%02d", p.Year, m),
			DangerousCount: asOf[domain.StatusBad],
		})
	}

	data, err := report.Build(wb)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("compliance_report_%s.xlsx", label), data, nil
}

// GenerateAndUpload builds the workbook and stores it through the
// configured uploader, returning a retrieval URL.
func (s *ReportService) GenerateAndUpload(ctx context.Context, p Period) (string, error) {
	if s.uploader == nil {
		return "", invalid("report storage is not configured")
	}
	name, data, err := s.Generate(ctx, p)
	if err != nil {
		return "", err
	}
	return s.uploader.UploadReport(reportPrefix+name, data, xlsxContentType)
}

const reportPrefix = "reports/"

// Stored lists the keys of previously uploaded reports.
func (s *ReportService) Stored(ctx context.Context) ([]string, error) {
	if s.uploader == nil {
		return nil, invalid("report storage is not configured")
	}
	return s.uploader.ListReports(reportPrefix)
}

// FetchStored retrieves an uploaded report by filename.
func (s *ReportService) FetchStored(ctx context.Context, name string) ([]byte, error) {
	if s.uploader == nil {
		return nil, invalid("report storage is not configured")
	}
	if name == "" {
		return nil, invalid("report name is required")
	}
	return s.uploader.DownloadReport(reportPrefix + name)
}
