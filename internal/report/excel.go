package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook is the flattened content of a compliance report. The builder
// renders it into the four-sheet layout the committee expects:
// Overview, Companies, Penalties, Monthly Trend.
type Workbook struct {
	Period      string
	GeneratedAt string

	TotalCompanies     int
	DangerousCompanies int
	ActivePenalties    int

	Companies []CompanyRow
	Penalties []PenaltyRow
	Trend     []TrendRow
}

type CompanyRow struct {
	ID           int64
	Name         string
	Registration string
	Region       string
	Industry     string
	MaxAllowed   float64
	Current      float64
	Status       string
	SensorActive bool
	CreatedAt    string
}

type PenaltyRow struct {
	Number        string
	Company       string
	ExcessAmount  string
	TreesRequired int
	Status        string
	Deadline      string
	CreatedAt     string
}

type TrendRow struct {
	Month          string
	DangerousCount int
}

var companyHeader = []interface{}{
	"ID", "Company", "Registration", "Region", "Industry",
	"Max Allowed (kg/h)", "Current (kg/h)", "Status", "Sensor Active", "Created",
}

var penaltyHeader = []interface{}{
	"Penalty Number", "Company", "Excess (kg/h)", "Trees Required",
	"Status", "Deadline", "Created",
}

// Build renders the workbook to xlsx bytes.
func Build(wb Workbook) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := buildSheet(f, "Overview", headerStyle,
		[]interface{}{"Report Period", "Total Companies", "Dangerous Companies", "Active Penalties", "Generated"},
		[][]interface{}{{wb.Period, wb.TotalCompanies, wb.DangerousCompanies, wb.ActivePenalties, wb.GeneratedAt}},
	); err != nil {
		return nil, err
	}

	companyRows := make([][]interface{}, 0, len(wb.Companies))
	for _, c := range wb.Companies {
		companyRows = append(companyRows, []interface{}{
			c.ID, c.Name, c.Registration, c.Region, c.Industry,
			c.MaxAllowed, c.Current, c.Status, c.SensorActive, c.CreatedAt,
		})
	}
	if err := buildSheet(f, "Companies", headerStyle, companyHeader, companyRows); err != nil {
		return nil, err
	}

	penaltyRows := make([][]interface{}, 0, len(wb.Penalties))
	for _, p := range wb.Penalties {
		penaltyRows = append(penaltyRows, []interface{}{
			p.Number, p.Company, p.ExcessAmount, p.TreesRequired,
			p.Status, p.Deadline, p.CreatedAt,
		})
	}
	if err := buildSheet(f, "Penalties", headerStyle, penaltyHeader, penaltyRows); err != nil {
		return nil, err
	}

	trendRows := make([][]interface{}, 0, len(wb.Trend))
	for _, t := range wb.Trend {
		trendRows = append(trendRows, []interface{}{t.Month, t.DangerousCount})
	}
	if err := buildSheet(f, "Monthly Trend", headerStyle,
		[]interface{}{"Month", "Dangerous Companies"}, trendRows); err != nil {
		return nil, err
	}

	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func buildSheet(f *excelize.File, name string, headerStyle int, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(name, "A1", endCell, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
