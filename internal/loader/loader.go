// Package loader turns uploaded bytes into a table.Table of text cells.
//
// Loading is two-phase for spreadsheets: Sheets lists the sheet names of a
// workbook, then Load reads the chosen sheet. CSV files have no sheets and
// load directly. Every engine failure surfaces as a *LoadError and no
// partial table is ever returned.
package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// DefaultMaxSize is the upload size limit used when none is configured.
const DefaultMaxSize int64 = 500 << 20

var errNoColumns = errors.New("no columns to parse from file")

// engine is implemented once per spreadsheet format.
type engine interface {
	sheets(data []byte) ([]string, error)
	rows(data []byte, sheet string) ([][]string, error)
}

var engines = map[Format]engine{
	FormatXLSX: xlsxEngine{},
	FormatXLS:  xlsEngine{},
	FormatXLSB: xlsbEngine{},
}

// Sheets lists the sheet names of a workbook in workbook order. CSV input
// has no sheets and yields nil.
func Sheets(data []byte, f Format) ([]string, error) {
	if f == FormatCSV {
		return nil, nil
	}
	if !f.IsSpreadsheet() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	names, err := engines[f].sheets(data)
	if err != nil {
		return nil, loadErr(f, err)
	}
	return names, nil
}

// Load parses data into a table. Spreadsheet formats require the name of
// an existing sheet; sheet is ignored for CSV.
func Load(data []byte, f Format, sheet string) (*table.Table, error) {
	if f == FormatCSV {
		return loadCSV(data)
	}
	if !f.IsSpreadsheet() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	eng := engines[f]
	if strings.TrimSpace(sheet) == "" {
		return nil, ErrSheetRequired
	}

	names, err := eng.sheets(data)
	if err != nil {
		return nil, loadErr(f, err)
	}
	if !contains(names, sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := eng.rows(data, sheet)
	if err != nil {
		return nil, loadErr(f, err)
	}

	t, err := buildTable(rows, false)
	if err != nil {
		return nil, loadErr(f, err)
	}
	return t, nil
}

// buildTable takes the first non-blank row as the header. Blank header cells
// become "Unnamed: <i>" and repeated names are made unique. Short rows are
// padded with nulls.
//
// With strict set (delimited text) a row wider than the header is an error
// and only rows without any field are skipped, so a line of empty fields
// stays as an all-null row. Otherwise the header is widened and rows whose
// cells are all empty are skipped.
func buildTable(rows [][]string, strict bool) (*table.Table, error) {
	skip := isBlank
	if strict {
		skip = func(row []string) bool { return len(row) == 0 }
	}

	start := 0
	for start < len(rows) && skip(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, errNoColumns
	}

	header := rows[start]
	data := rows[start+1:]

	width := len(header)
	for i, row := range data {
		if len(row) <= width || isBlank(row[width:]) {
			continue
		}
		if strict {
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), start+i+2, len(row))
		}
		width = len(row)
	}

	cols := make([]string, width)
	for i := range cols {
		if i < len(header) && header[i] != "" {
			cols[i] = header[i]
		} else {
			cols[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	t := table.New(table.UniqueNames(cols))
	for _, row := range data {
		if skip(row) {
			continue
		}
		t.Append(row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
