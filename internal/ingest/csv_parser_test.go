package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestParse_HeaderAndRows(t *testing.T) {
	input := "First Name,Last Name,Email\nJohn,Doe,john@x.com\nJane,Roe,jane@x.com\n"

	table, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"First Name", "Last Name", "Email"}, table.Header)
	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Header))
	}
	assert.Equal(t, "jane@x.com", table.Rows[1]["Email"])
	assert.Empty(t, table.Warnings)
}

func TestParse_QuotedFields(t *testing.T) {
	input := "Name,Notes\n\"Doe, John\",\"said \"\"hi\"\"\nthen left\"\n"

	table, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Doe, John", table.Rows[0]["Name"])
	assert.Equal(t, "said \"hi\"\nthen left", table.Rows[0]["Notes"])
}

func TestParse_HeaderOnly(t *testing.T) {
	table, err := Parse(strings.NewReader("First Name,Last Name\n"))

	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, "CSV file is empty or invalid", err.Error())
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestParse_EmptyInput(t *testing.T) {
	table, err := Parse(strings.NewReader(""))

	assert.ErrorIs(t, err, ErrEmpty)
	assert.NotNil(t, table)
	assert.Empty(t, table.Rows)
}

func TestParse_SkipsLeadingBlankLines(t *testing.T) {
	table, err := Parse(strings.NewReader("\n\nEmail\na@x.com\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"Email"}, table.Header)
	require.Len(t, table.Rows, 1)
}

func TestParse_ShortAndLongRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"

	table, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", table.Rows[0]["C"])
	assert.Len(t, table.Rows[1], 3)
	require.Len(t, table.Warnings, 2)
	assert.Contains(t, table.Warnings[0], "row 2")
	assert.Contains(t, table.Warnings[1], "row 3")
}

func TestParse_DuplicateHeaders(t *testing.T) {
	input := "Email,City,City\na@x.com,Ogden,Provo\n"

	table, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "City", "City (2)"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 3)
	assert.Equal(t, "Ogden", table.Rows[0]["City"])
	assert.Equal(t, "Provo", table.Rows[0]["City (2)"])
	require.Len(t, table.Warnings, 1)
	assert.Contains(t, table.Warnings[0], "column 'City' appears more than once")
}

func TestParse_TrimsHeadersAndUTF8BOM(t *testing.T) {
	input := "\xEF\xBB\xBF Email , Phone\na@x.com,555\n"

	table, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Phone"}, table.Header)
	assert.Equal(t, "a@x.com", table.Rows[0]["Email"])
}

func TestParse_UTF16WithBOM(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Email,City\na@x.com,Provo\n")
	require.NoError(t, err)

	table, err := Parse(strings.NewReader(encoded))

	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "City"}, table.Header)
	assert.Equal(t, "Provo", table.Rows[0]["City"])
}

func TestRowNumber(t *testing.T) {
	assert.Equal(t, 2, RowNumber(0))
	assert.Equal(t, 11, RowNumber(9))
}
