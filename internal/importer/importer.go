// Package importer reads bulk immersion logs from CSV and XLSX uploads.
//
// The first row is a header naming the columns; order is free and names are
// case-insensitive. "type" and "date" are required, the remaining columns
// (time, episodes, pages, chars, description) are optional. Cell problems are
// reported per row so one bad line does not reject the whole file.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
	ErrTooManyRows       = errors.New("file has too many rows")
	ErrMissingColumn     = errors.New("missing required column")
	ErrEmptyFile         = errors.New("file has no header row")
)

// Record is one parsed data row. Line is the 1-based line in the source file.
type Record struct {
	Line        int
	Type        string
	Date        time.Time
	Time        *float64
	Episodes    *int
	Pages       *int
	Chars       *int
	Description string
}

// RowError describes why a row was skipped.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"error"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type Result struct {
	Records []Record
	Errors  []RowError
}

type Options struct {
	// MaxRows caps data rows; 0 means unlimited.
	MaxRows int
	// Location interprets dates without a zone. Defaults to UTC.
	Location *time.Location
}

// DetectFormat picks the parser from a file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// Parse reads every row of r.
func Parse(r io.Reader, format Format, opts Options) (*Result, error) {
	var rows [][]string
	var err error

	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows, opts)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	// Use active sheet or first sheet
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = sheetNames[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	return rows, nil
}

func parseRows(rows [][]string, opts Options) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if name != "" {
			columns[name] = i
		}
	}
	for _, required := range []string{"type", "date"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	result := &Result{}
	dataRows := 0
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		dataRows++
		if opts.MaxRows > 0 && dataRows > opts.MaxRows {
			return nil, fmt.Errorf("%w: limit is %d", ErrTooManyRows, opts.MaxRows)
		}

		line := i + 2
		rec, err := parseRecord(row, columns, loc)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		rec.Line = line
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func parseRecord(row []string, columns map[string]int, loc *time.Location) (Record, error) {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		Type:        cell("type"),
		Description: cell("description"),
	}
	if rec.Type == "" {
		return rec, errors.New("type is required")
	}

	date, err := ParseDate(cell("date"), loc)
	if err != nil {
		return rec, err
	}
	rec.Date = date

	if rec.Time, err = parseFloat(cell("time"), "time"); err != nil {
		return rec, err
	}
	if rec.Episodes, err = parseInt(cell("episodes"), "episodes"); err != nil {
		return rec, err
	}
	if rec.Pages, err = parseInt(cell("pages"), "pages"); err != nil {
		return rec, err
	}
	if rec.Chars, err = parseInt(cell("chars"), "chars"); err != nil {
		return rec, err
	}
	return rec, nil
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/06",
}

// ParseDate accepts RFC 3339 timestamps and the common spreadsheet date
// layouts. Values without a zone are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseFloat(s, field string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", field, s)
	}
	return &v, nil
}

func parseInt(s, field string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", field, s)
	}
	return &v, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
