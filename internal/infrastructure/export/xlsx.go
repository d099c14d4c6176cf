// Package export renders report tables as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"stockledger/internal/domain/reports"
)

// ContentTypeXLSX is the MIME type of the workbooks written here.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// WriteXLSX writes t as a single-sheet workbook: a bold header row of
// column labels followed by one row per report row.
func WriteXLSX(w io.Writer, sheet string, t reports.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("name sheet: %w", err)
		}
	}

	header := make([]any, 0, len(t.Header()))
	for _, col := range t.Header() {
		header = append(header, col.Label)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	for i, values := range t.Values() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := values
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes t to a file at path.
func SaveXLSX(path, sheet string, t reports.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteXLSX(f, sheet, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
