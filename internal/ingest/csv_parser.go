package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmpty is returned when the input has no header or no data rows.
var ErrEmpty = errors.New("CSV file is empty or invalid")

// RawRow maps a column header to the raw cell value of one data row.
type RawRow map[string]string

// Table is a parsed CSV file.
type Table struct {
	Header []string `json:"header"`
	Rows   []RawRow `json:"rows"`
	// Warnings are non-fatal shape problems, such as rows with too few cells.
	Warnings []string `json:"warnings,omitempty"`
}

// RowNumber returns the 1-based file line number of the data row at index i,
// counting the header as line 1.
func RowNumber(i int) int {
	return i + 2
}

// Parse reads RFC 4180 CSV text. The first non-empty line is the header;
// every returned row carries exactly one key per header column. Input with a
// UTF-8 or UTF-16 byte order mark is decoded and the mark dropped.
//
// When there is no header or no data row, Parse returns an empty table and ErrEmpty.
func Parse(reader io.Reader) (*Table, error) {
	decoded := transform.NewReader(reader, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	csvReader := csv.NewReader(decoded)
	csvReader.FieldsPerRecord = -1 // Row width is normalized below
	csvReader.LazyQuotes = true

	headers, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return emptyTable(), ErrEmpty
		}
		return emptyTable(), fmt.Errorf("failed to read CSV headers: %w", err)
	}

	table := &Table{Rows: make([]RawRow, 0)}
	table.setHeader(headers)

	for {
		csvRow, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			line, _ := csvReader.FieldPos(0)
			return emptyTable(), fmt.Errorf("line %d: failed to read CSV row: %w", line, err)
		}

		table.appendRow(csvRow, true)
	}

	if len(table.Rows) == 0 {
		return emptyTable(), ErrEmpty
	}

	return table, nil
}

// appendRow adds cells as a row keyed by the header. Missing cells become
// empty strings and surplus cells are dropped; warn records either case.
func (t *Table) appendRow(cells []string, warn bool) {
	rowNum := RowNumber(len(t.Rows))
	if warn {
		switch {
		case len(cells) < len(t.Header):
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("row %d has %d columns, expected %d; missing cells treated as empty", rowNum, len(cells), len(t.Header)))
		case len(cells) > len(t.Header):
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("row %d has %d columns, expected %d; extra cells ignored", rowNum, len(cells), len(t.Header)))
		}
	}

	row := make(RawRow, len(t.Header))
	for i, header := range t.Header {
		if i < len(cells) {
			row[header] = cells[i]
		} else {
			row[header] = ""
		}
	}
	t.Rows = append(t.Rows, row)
}

// setHeader trims the header cells and renames repeated names to "Name (2)",
// "Name (3)" and so on, so every column keeps its own key in each row.
func (t *Table) setHeader(headers []string) {
	seen := make(map[string]int, len(headers))
	t.Header = make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		seen[h]++
		if n := seen[h]; n > 1 {
			renamed := fmt.Sprintf("%s (%d)", h, n)
			t.Warnings = append(t.Warnings,
				fmt.Sprintf("column '%s' appears more than once; column %d was renamed to '%s'", h, i+1, renamed))
			h = renamed
		}
		t.Header[i] = h
	}
}

func emptyTable() *Table {
	return &Table{Header: []string{}, Rows: []RawRow{}}
}
