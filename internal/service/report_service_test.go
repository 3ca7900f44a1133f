package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/store"
)

func TestReportGenerateMonthly(t *testing.T) {
	svcs, mem := newTestServices()
	ctx := context.Background()

	mem.SeedRegion(domain.Region{ID: 1, Name: "Tashkent"})
	mem.SeedIndustryType(domain.IndustryType{ID: 1, Name: "Cement"})

	in := validCompany()
	in.RegionID = 1
	in.IndustryTypeID = 1
	in.CurrentAmount = 150
	c, err := svcs.Companies.Create(ctx, in)
	require.NoError(t, err)
	p, err := svcs.Penalties.Create(ctx, c.ID, deadline)
	require.NoError(t, err)

	now := time.Now().UTC()
	name, data, err := svcs.Reports.Generate(ctx, Period{
		Type: "monthly", Year: now.Year(), Month: now.Month(),
	})
	require.NoError(t, err)
	assert.Contains(t, name, ".xlsx")
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Overview", "Companies", "Penalties", "Monthly Trend"} {
		assert.Contains(t, sheets, want)
	}

	// The penalty created this month lands on the Penalties sheet.
	number, err := f.GetCellValue("Penalties", "A2")
	require.NoError(t, err)
	assert.Equal(t, p.Number, number)
	excess, err := f.GetCellValue("Penalties", "C2")
	require.NoError(t, err)
	assert.Equal(t, "50.000", excess)
}

func TestReportPeriodValidation(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	var vErr *ValidationError
	_, _, err := svcs.Reports.Generate(ctx, Period{Type: "monthly", Year: 2026})
	require.ErrorAs(t, err, &vErr, "monthly requires a month")

	_, _, err = svcs.Reports.Generate(ctx, Period{Type: "quarterly", Year: 2026, Quarter: 5})
	require.ErrorAs(t, err, &vErr)

	_, _, err = svcs.Reports.Generate(ctx, Period{Type: "daily", Year: 2026})
	require.ErrorAs(t, err, &vErr)
}

func TestReportQuarterlyAndYearlyWindows(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()

	name, data, err := svcs.Reports.Generate(ctx, Period{Type: "quarterly", Year: 2026, Quarter: 2})
	require.NoError(t, err)
	assert.Equal(t, "compliance_report_2026-Q2.xlsx", name)
	assert.NotEmpty(t, data)

	name, data, err = svcs.Reports.Generate(ctx, Period{Type: "yearly", Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "compliance_report_2026.xlsx", name)
	assert.NotEmpty(t, data)
}

func TestReportUploadRequiresStorage(t *testing.T) {
	svcs, _ := newTestServices()
	ctx := context.Background()
	var vErr *ValidationError

	_, err := svcs.Reports.GenerateAndUpload(ctx, Period{Type: "yearly", Year: 2026})
	require.ErrorAs(t, err, &vErr)
	_, err = svcs.Reports.Stored(ctx)
	require.ErrorAs(t, err, &vErr)
	_, err = svcs.Reports.FetchStored(ctx, "compliance_report_2026.xlsx")
	require.ErrorAs(t, err, &vErr)
}

func TestReportUploadListAndFetch(t *testing.T) {
	mem := repository.NewMemory()
	uploader := &memoryUploader{}
	svcs := NewWithRepos(Repos{
		Companies:     mem.Companies(),
		Penalties:     mem.Penalties(),
		SensorData:    mem.SensorData(),
		Notifications: mem.Notifications(),
		Responses:     mem.Responses(),
		Regions:       mem.Regions(),
	}, store.NewMemoryKV(), nil, uploader)
	ctx := context.Background()

	url, err := svcs.Reports.GenerateAndUpload(ctx, Period{Type: "yearly", Year: 2026})
	require.NoError(t, err)
	assert.Contains(t, url, "compliance_report_2026.xlsx")

	keys, err := svcs.Reports.Stored(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"reports/compliance_report_2026.xlsx"}, keys)

	data, err := svcs.Reports.FetchStored(ctx, "compliance_report_2026.xlsx")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Overview")
}
