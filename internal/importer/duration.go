package importer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// daysPerMonth is the mean Gregorian month length.
const daysPerMonth = 30.44

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// ParseDate accepts the date spellings spreadsheets commonly produce.
func ParseDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("'%s' is not a recognized date", value)
}

// MonthsBetween rounds the days from start to end, divided by the mean
// month length, to the nearest whole month.
func MonthsBetween(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	return int(math.Round(days / daysPerMonth))
}

// FormatMonths renders a month count as stored in the duration field.
func FormatMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}
