package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Sheet1"

// reportColumns is the single source of column order for every export.
var reportColumns = []string{
	"Time (s)",
	"Voltage (V)",
	"Current (mA)",
	"Temperature (°C)",
	"Battery (%)",
	"Ping (ms)",
	"Packet Loss (%)",
}

func reportRow(s Series, i int) []interface{} {
	return []interface{}{
		s.Times[i],
		s.VoltageV[i],
		s.CurrentMA[i],
		s.TemperatureC[i],
		s.BatteryPct[i],
		s.PingMS[i],
		s.LossPct[i],
	}
}

// DefaultReportPath names a report after the time it was taken.
func DefaultReportPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("adb_report_%s.xlsx", now.Format("20060102_150405")))
}

// ExportXLSX writes one header row and one row per sample to path.
func ExportXLSX(s Series, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(reportColumns))
	for i, c := range reportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < s.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := reportRow(s, i)
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(reportColumns))
	if err != nil {
		return fmt.Errorf("failed to name last column: %w", err)
	}
	if err := f.SetCellStyle(reportSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(reportSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// SaveChartPNG writes a rendered chart panel next to a report.
func SaveChartPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

// chartPath derives a panel image name from a report path, e.g.
// adb_report_X.xlsx -> adb_report_X_energy.png.
func chartPath(reportPath, panel string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + "_" + panel + ".png"
}
