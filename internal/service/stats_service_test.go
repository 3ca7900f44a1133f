package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecowatch/emission-monitor/internal/domain"
)

func TestDashboardStats(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	createCompany(t, svcs, 80, 100)
	over := createCompany(t, svcs, 150, 100)
	createCompany(t, svcs, 100, 100)

	_, err := svcs.Penalties.Create(ctx, over.ID, deadline)
	require.NoError(t, err)

	stats, err := svcs.Stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCompanies)
	assert.Equal(t, 1, stats.DangerousCompanies)
	assert.Equal(t, 1, stats.ActivePenalties)

	// Heaviest emitters first.
	require.Len(t, stats.TopCompanies, 3)
	assert.Equal(t, float64(150), stats.TopCompanies[0].CurrentAmount)
	assert.Equal(t, float64(100), stats.TopCompanies[1].CurrentAmount)
	assert.Equal(t, float64(80), stats.TopCompanies[2].CurrentAmount)
}

func TestDashboardStatsServedFromCache(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	createCompany(t, svcs, 80, 100)
	first, err := svcs.Stats.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalCompanies)

	// A write inside the TTL is not visible; the cached totals are served.
	createCompany(t, svcs, 150, 100)
	second, err := svcs.Stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalCompanies)
}

func TestReportAggregates(t *testing.T) {
	svcs, mem := newTestServices()
	ctx := context.Background()

	mem.SeedRegion(domain.Region{ID: 1, Name: "Tashkent"})
	mem.SeedIndustryType(domain.IndustryType{ID: 1, Name: "Cement"})

	in := validCompany()
	in.RegionID = 1
	in.IndustryTypeID = 1
	_, err := svcs.Companies.Create(ctx, in)
	require.NoError(t, err)

	in.Registration = "222222222"
	in.CurrentAmount = 150
	_, err = svcs.Companies.Create(ctx, in)
	require.NoError(t, err)

	data, err := svcs.Stats.Report(ctx, 2026)
	require.NoError(t, err)

	require.Len(t, data.ByStatus, 3)
	byStatus := map[domain.Status]int{}
	for _, row := range data.ByStatus {
		byStatus[row.Status] = row.Count
	}
	assert.Equal(t, 1, byStatus[domain.StatusGood])
	assert.Equal(t, 1, byStatus[domain.StatusBad])

	require.Len(t, data.MonthlyTrend, 12)
	assert.Equal(t, "2026-01", data.MonthlyTrend[0].Label)

	require.Len(t, data.ByRegion, 1)
	assert.Equal(t, 2, data.ByRegion[0].Count)
	require.Len(t, data.ByIndustry, 1)
	assert.Equal(t, "Cement", data.ByIndustry[0].Name)
}
