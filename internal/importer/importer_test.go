package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("logs.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = DetectFormat("export.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = DetectFormat("notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParse_CSV(t *testing.T) {
	input := "Type,Date,Time,Episodes,Pages,Chars,Description\n" +
		"reading,2026-10-17,45,,,\"12,000\",novel\n" +
		"anime,2026-10-17 21:30,,3,,,\n" +
		",,,,,,\n" +
		"manga,not-a-date,,,20,,\n" +
		"vn,2026-10-18T08:00:00+09:00,30,,,abc,\n"

	res, err := Parse(strings.NewReader(input), FormatCSV, Options{})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	first := res.Records[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "reading", first.Type)
	assert.Equal(t, 45.0, *first.Time)
	assert.Equal(t, 12000, *first.Chars)
	assert.Equal(t, "novel", first.Description)
	assert.Nil(t, first.Episodes)

	second := res.Records[1]
	assert.Equal(t, 3, *second.Episodes)
	assert.Equal(t, time.Date(2026, 10, 17, 21, 30, 0, 0, time.UTC), second.Date)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Message, "invalid date")
	assert.Equal(t, 6, res.Errors[1].Line)
	assert.Contains(t, res.Errors[1].Message, "invalid chars")
}

func TestParse_DateOnlyUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	res, err := Parse(strings.NewReader("type,date\naudio,2026-10-18\n"), FormatCSV, Options{Location: tokyo})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC), res.Records[0].Date.UTC())
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("type,time\nreading,10\n"), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = Parse(strings.NewReader(""), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParse_MaxRows(t *testing.T) {
	input := "type,date\nreading,2026-10-01\nreading,2026-10-02\nreading,2026-10-03\n"

	_, err := Parse(strings.NewReader(input), FormatCSV, Options{MaxRows: 2})
	assert.ErrorIs(t, err, ErrTooManyRows)

	res, err := Parse(strings.NewReader(input), FormatCSV, Options{MaxRows: 3})
	require.NoError(t, err)
	assert.Len(t, res.Records, 3)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "type", "time", "pages"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2026-10-10", "manga", "25", "40"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2026-10-11", "", "5", ""}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := Parse(buf, FormatXLSX, Options{})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "manga", res.Records[0].Type)
	assert.Equal(t, 40, *res.Records[0].Pages)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
}
