package loader

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DateTimeLayout renders spreadsheet date cells.
const DateTimeLayout = "2006-01-02 15:04:05"

const timeOnlyLayout = "15:04:05"

// xlsxEngine reads Office Open XML workbooks. Cells are read as their stored
// values, not the text Excel would display, so wide numbers keep every
// digit. Numbers styled as dates are rendered with DateTimeLayout.
type xlsxEngine struct{}

func (xlsxEngine) sheets(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func (xlsxEngine) rows(data []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	dc := newDateCells(f)
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			if v == "0" || v == "1" {
				if text, ok := dc.boolean(sheet, c+1, r+1, v); ok {
					row[c] = text
					continue
				}
			}
			serial, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			if text, ok := dc.render(sheet, c+1, r+1, serial); ok {
				row[c] = text
			}
		}
	}
	return rows, nil
}

// dateCells turns stored date serials and booleans back into text.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	byStyle  map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	dc := &dateCells{f: f, byStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dc.date1904 = *props.Date1904
	}
	return dc
}

func (dc *dateCells) render(sheet string, col, row int, serial float64) (string, bool) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	idx, err := dc.f.GetCellStyle(sheet, cell)
	if err != nil || !dc.isDateStyle(idx) {
		return "", false
	}

	t, err := excelize.ExcelDateToTime(serial, dc.date1904)
	if err != nil {
		return "", false
	}
	if serial < 1 {
		return t.Format(timeOnlyLayout), true
	}
	return t.Format(DateTimeLayout), true
}

// boolean renders a boolean cell as True or False.
func (dc *dateCells) boolean(sheet string, col, row int, v string) (string, bool) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	typ, err := dc.f.GetCellType(sheet, cell)
	if err != nil || typ != excelize.CellTypeBool {
		return "", false
	}
	if v == "1" {
		return "True", true
	}
	return "False", true
}

func (dc *dateCells) isDateStyle(idx int) bool {
	if v, ok := dc.byStyle[idx]; ok {
		return v
	}
	v := false
	if style, err := dc.f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			v = isDateFormatCode(*style.CustomNumFmt)
		} else {
			v = isBuiltinDateFormat(style.NumFmt)
		}
	}
	dc.byStyle[idx] = v
	return v
}

// isBuiltinDateFormat reports the built-in number format ids that show a
// date or a time of day.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode inspects a custom format code for date or time tokens,
// ignoring quoted literals, escapes and bracketed colors or locales.
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if code == "general" || code == "@" {
		return false
	}
	// only the positive section decides
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// elapsed time such as [h]:mm is still a time
			if i+1 < len(code) && strings.IndexByte("hms", code[i+1]) >= 0 {
				return true
			}
			inBracket = true
		case ch == '\\', ch == '_', ch == '*':
			i++
		case strings.IndexByte("ydmhs", ch) >= 0:
			return true
		}
	}
	return false
}
