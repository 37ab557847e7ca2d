package loader

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// xlsEngine reads legacy BIFF8 workbooks.
//
// Text cells come from the library as is. Numeric cells styled as dates are
// rendered here: the library formats them as year.month and keeps the
// cell's format index and the workbook date mode unexported, so both are
// read from its cell records directly.
type xlsEngine struct{}

func (xlsEngine) open(data []byte) (wb *xls.WorkBook, err error) {
	// the BIFF parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			wb, err = nil, fmt.Errorf("corrupt workbook: %v", r)
		}
	}()

	wb, err = xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errors.New("corrupt workbook")
	}
	return wb, nil
}

func (e xlsEngine) sheets(data []byte) ([]string, error) {
	wb, err := e.open(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

func (e xlsEngine) rows(data []byte, sheet string) (rows [][]string, err error) {
	wb, err := e.open(data)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("corrupt sheet %q: %v", sheet, r)
		}
	}()

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	book := newXLSBook(wb)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := sheetRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, book.cells(row))
	}
	return rows, nil
}

// sheetRow returns row i, or nil when the sheet has no record for it.
func sheetRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

// xlsNumber is a numeric cell record: its column, format index and value.
type xlsNumber struct {
	col   int
	xf    int
	value float64
}

type xlsBook struct {
	wb       *xls.WorkBook
	date1904 bool
	byXF     map[int]bool
}

func newXLSBook(wb *xls.WorkBook) *xlsBook {
	b := &xlsBook{wb: wb, byXF: make(map[int]bool)}
	if f := reflect.ValueOf(wb).Elem().FieldByName("dateMode"); f.IsValid() {
		b.date1904 = f.Uint() == 1
	}
	return b
}

// cells renders one row, widened to cover every cell record it holds.
func (b *xlsBook) cells(row *xls.Row) []string {
	nums, last := numericCells(row)
	width := row.LastCol()
	if last+1 > width {
		width = last + 1
	}

	cells := make([]string, width)
	for c := row.FirstCol(); c < width; c++ {
		cells[c] = row.Col(c)
	}
	for _, n := range nums {
		if n.col < width && b.isDate(n.xf) {
			cells[n.col] = formatSerial(n.value, b.date1904)
		}
	}
	return cells
}

func (b *xlsBook) isDate(xf int) bool {
	if v, ok := b.byXF[xf]; ok {
		return v
	}
	v := false
	if xf >= 0 && xf < len(b.wb.Xfs) {
		id := -1
		switch x := b.wb.Xfs[xf].(type) {
		case *xls.Xf8:
			id = int(x.Format)
		case *xls.Xf5:
			id = int(x.Format)
		}
		switch {
		case id < 0:
		case isBuiltinDateFormat(id):
			v = true
		case id >= 164:
			if f := b.wb.Formats[uint16(id)]; f != nil {
				v = isDateFormatCode(reflect.ValueOf(f).Elem().FieldByName("str").String())
			}
		}
	}
	b.byXF[xf] = v
	return v
}

var (
	rkColType     = reflect.TypeFor[xls.RkCol]()
	mulrkColType  = reflect.TypeFor[xls.MulrkCol]()
	numberColType = reflect.TypeFor[xls.NumberCol]()
)

// numericCells lists the RK, MULRK and NUMBER records of row and the last
// column any record covers.
func numericCells(row *xls.Row) ([]xlsNumber, int) {
	var nums []xlsNumber
	last := -1

	cols := reflect.ValueOf(row).Elem().FieldByName("cols")
	if !cols.IsValid() || cols.Kind() != reflect.Map {
		return nil, last
	}

	iter := cols.MapRange()
	for iter.Next() {
		first := int(iter.Key().Uint())
		rec := iter.Value()
		for rec.Kind() == reflect.Interface || rec.Kind() == reflect.Pointer {
			if rec.IsNil() {
				break
			}
			rec = rec.Elem()
		}
		if first > last {
			last = first
		}
		if rec.Kind() != reflect.Struct {
			continue
		}
		if lc := rec.FieldByName("LastColB"); lc.IsValid() {
			if l := int(lc.Uint()); l > last {
				last = l
			}
		}

		switch rec.Type() {
		case rkColType:
			xfrk := rec.FieldByName("Xfrk")
			nums = append(nums, xlsNumber{
				col:   first,
				xf:    int(xfrk.FieldByName("Index").Uint()),
				value: rkValue(xfrk.FieldByName("Rk").Uint()),
			})
		case mulrkColType:
			xfrks := rec.FieldByName("Xfrks")
			for i := 0; i < xfrks.Len(); i++ {
				x := xfrks.Index(i)
				nums = append(nums, xlsNumber{
					col:   first + i,
					xf:    int(x.FieldByName("Index").Uint()),
					value: rkValue(x.FieldByName("Rk").Uint()),
				})
			}
		case numberColType:
			nums = append(nums, xlsNumber{
				col:   first,
				xf:    int(rec.FieldByName("Index").Uint()),
				value: rec.FieldByName("Float").Float(),
			})
		}
	}
	return nums, last
}

func rkValue(raw uint64) float64 {
	v, _ := strconv.ParseFloat(xls.RK(uint32(raw)).String(), 64)
	return v
}

// formatSerial renders an Excel date serial with DateTimeLayout, or as a
// time of day when it has no date part.
func formatSerial(serial float64, date1904 bool) string {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	if serial < 1 {
		return t.Format(timeOnlyLayout)
	}
	return t.Format(DateTimeLayout)
}
