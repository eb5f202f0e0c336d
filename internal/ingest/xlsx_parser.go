package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of an Excel workbook. The first row with
// any cell is the header; the rest follows the same rules as Parse. Trailing
// empty cells are not reported as short rows since workbooks omit them.
func ParseXLSX(reader io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return emptyTable(), fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return emptyTable(), fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	for len(rows) > 0 && len(rows[0]) == 0 {
		rows = rows[1:]
	}
	if len(rows) < 2 {
		return emptyTable(), ErrEmpty
	}

	table := &Table{Rows: make([]RawRow, 0, len(rows)-1)}
	table.setHeader(rows[0])
	for _, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		table.appendRow(cells, len(cells) > len(table.Header))
	}

	if len(table.Rows) == 0 {
		return emptyTable(), ErrEmpty
	}
	return table, nil
}

// ParseFile picks the parser by filename extension: .xlsx files are read as
// workbooks, everything else as CSV.
func ParseFile(filename string, reader io.Reader) (*Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ParseXLSX(reader)
	}
	return Parse(reader)
}
