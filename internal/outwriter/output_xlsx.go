package outwriter

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/snowdash/schema"
	"github.com/xuri/excelize/v2"
)

// writeXLSX writes each sheet to its own worksheet of a new workbook.
func writeXLSX(outputFile string, sheets []sheet) error {
	if outputFile == "" {
		return errors.New("--output-file is required for xlsx output")
	}
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", s.name, err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		header := make([]any, len(s.header))
		for j, h := range s.header {
			header[j] = h
		}
		if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", s.name, err)
		}
		if err := f.SetRowStyle(s.name, 1, 1, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", s.name, err)
		}

		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for j, v := range row {
				values[j] = xlsxCell(v)
			}
			if err := f.SetSheetRow(s.name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", r+1, s.name, err)
			}
		}
	}

	if err := f.SaveAs(outputFile); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote XLSX workbook to %s\n", outputFile)
	return nil
}

// xlsxCell keeps numbers numeric and renders dates as calendar keys.
func xlsxCell(v any) any {
	if t, ok := v.(time.Time); ok {
		return schema.DateKey(t)
	}
	return v
}
