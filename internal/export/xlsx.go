package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	templateSheet = "Import Template"
	exportSheet   = "Missionaries"
)

// WriteTemplateXLSX writes the import template as a workbook.
func WriteTemplateXLSX(w io.Writer) error {
	rows := templateRows()
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = toValues(r)
	}
	return writeWorkbook(w, templateSheet, values)
}

// WriteXLSX writes the same content as WriteCSV as a workbook. Hour columns
// are stored as numbers.
func WriteXLSX(w io.Writer, rows []Row) error {
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toValues(Header))
	for _, r := range rows {
		cells := toValues(r.Cells())
		cells[len(cells)-2] = r.Hours.TotalHours
		cells[len(cells)-1] = r.Hours.Entries
		values = append(values, cells)
	}
	return writeWorkbook(w, exportSheet, values)
}

func writeWorkbook(w io.Writer, sheet string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("create header style: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
		lastCol, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func toValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}
