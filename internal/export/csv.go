package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/myhometown/missionary-import/internal/schema"
)

// templateSample is the example row written under the template header.
var templateSample = map[string]string{
	"First Name":      "John",
	"Last Name":       "Doe",
	"Email":           "john.doe@example.com",
	"Phone":           "801-555-1234",
	"Status":          "active",
	"Level":           "city",
	"Assignment":      "Provo",
	"Type":            "missionary",
	"Gender":          "male",
	"Position":        "City Chair",
	"Position Detail": "",
	"Start Date":      "2024-01-15",
	"End Date":        "2025-07-15",
	"Street Address":  "123 Main St",
	"City":            "Provo",
	"State":           "UT",
	"Zip Code":        "84601",
	"Home Stake":      "Provo Central Stake",
	"Notes":           "",
}

func templateRows() [][]string {
	sample := make([]string, len(schema.TemplateHeader))
	for i, h := range schema.TemplateHeader {
		sample[i] = templateSample[h]
	}
	return [][]string{schema.TemplateHeader, sample}
}

// WriteTemplate writes the import template as CSV: the header row and one
// sample row.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(templateRows()); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

// WriteCSV writes rows under Header.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Cells()); err != nil {
			return fmt.Errorf("write export row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}
