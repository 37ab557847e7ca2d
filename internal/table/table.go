// Package table holds the in-memory tabular model shared by the loader and
// the reshaping pipeline.
//
// Every cell is text. The empty string stands for a null cell, so nothing is
// ever coerced to a number or a date until a stage explicitly asks for it.
// Tables are treated as values: pipeline stages return new tables and never
// write into the rows of their input.
package table

// Table is an ordered set of named columns over positionally ordered rows.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with a copy of the given header.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: [][]string{}}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of a column, or -1 when it is absent.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(row []string) {
	t.Rows = append(t.Rows, fit(row, len(t.Columns)))
}

// Clone returns a deep copy that shares no slices with t.
func (t *Table) Clone() *Table {
	out := New(t.Columns)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// Select projects the table onto the named columns, in the given order.
// Names that are not present yield null cells.
func (t *Table) Select(columns []string) *Table {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.Index(c)
	}

	out := New(columns)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, src := range idx {
			if src >= 0 && src < len(row) {
				cells[i] = row[src]
			}
		}
		out.Rows[r] = cells
	}
	return out
}

// Rename returns a table whose column from is called to. Rows are shared
// with t; callers must not modify them. A missing column is a no-op.
func (t *Table) Rename(from, to string) *Table {
	i := t.Index(from)
	if i < 0 {
		return t
	}
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	cols[i] = to
	return &Table{Columns: cols, Rows: t.Rows}
}

// Filter returns a table holding only the rows for which keep returns true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := New(t.Columns)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Column returns the values of one column, or nil when it is absent.
func (t *Table) Column(name string) []string {
	i := t.Index(name)
	if i < 0 {
		return nil
	}
	vals := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		vals[r] = row[i]
	}
	return vals
}

func fit(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
