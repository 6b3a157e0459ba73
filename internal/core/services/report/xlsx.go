package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXRenderer writes the report as an Excel workbook with a summary
// sheet, one row per column on a columns sheet, and an errors sheet
// when validation errors are present
type XLSXRenderer struct{}

// NewXLSXRenderer creates an XLSX renderer
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render implements Renderer
func (r *XLSXRenderer) Render(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	setRow := func(sheet string, row int, values ...interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := setRow(summarySheet, 1, "Run", rep.RunID); err != nil {
		return err
	}
	if err := setRow(summarySheet, 2, "File", rep.FileName); err != nil {
		return err
	}
	if err := setRow(summarySheet, 3, "Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if rep.Summary != nil {
		if err := setRow(summarySheet, 4, "Total rows", rep.Summary.TotalRows); err != nil {
			return err
		}
		if err := setRow(summarySheet, 5, "Valid rows", rep.Summary.ValidRows); err != nil {
			return err
		}
		if err := setRow(summarySheet, 6, "Invalid rows", rep.Summary.InvalidRows); err != nil {
			return err
		}
	}

	const columnsSheet = "Columns"
	if _, err := f.NewSheet(columnsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := []interface{}{"Column", "Unique", "Null", "Missing"}
	for _, name := range statOrder {
		header = append(header, string(name))
	}
	if err := setRow(columnsSheet, 1, header...); err != nil {
		return err
	}

	if rep.Summary != nil {
		for i, col := range rep.Summary.ColumnStatistics {
			row := []interface{}{col.ColumnName, col.UniqueValues, col.NullCount, col.MissingCount}
			for _, name := range statOrder {
				if value, ok := col.Statistics[name]; ok {
					row = append(row, value)
				} else {
					row = append(row, "")
				}
			}
			if err := setRow(columnsSheet, i+2, row...); err != nil {
				return err
			}
		}
	}

	if len(rep.Errors) > 0 {
		const errorsSheet = "Errors"
		if _, err := f.NewSheet(errorsSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := setRow(errorsSheet, 1, "Row", "Column", "Value", "Message"); err != nil {
			return err
		}
		for i, verr := range rep.Errors {
			if err := setRow(errorsSheet, i+2, verr.RowNumber, verr.ColumnName, verr.Value.String(), verr.Message); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// Format implements Renderer
func (r *XLSXRenderer) Format() string { return "xlsx" }

// Extension implements Renderer
func (r *XLSXRenderer) Extension() string { return ".xlsx" }
