package core

import (
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// AvailableColumns returns the layer's expected columns that t has, in
// layer order.
func AvailableColumns(t *table.Table, def LayerDefinition) []string {
	var cols []string
	for _, c := range def.Columns {
		if t.Has(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// ProjectCases builds the case log: the layer's available columns with
// incident_id renamed to case_id. When case_id is present, rows with an
// empty case id are dropped and only the first row per case id is kept.
func ProjectCases(t *table.Table, def LayerDefinition) (*table.Table, error) {
	cols := AvailableColumns(t, def)
	if len(cols) == 0 {
		return nil, &SchemaMismatchError{Layer: def.Layer, Expected: def.Columns}
	}

	out := t.Select(cols).Rename(IncidentIDColumn, CaseIDColumn)

	ci := out.Index(CaseIDColumn)
	if ci < 0 {
		return out, nil
	}

	seen := make(map[string]struct{}, out.Len())
	return out.Filter(func(row []string) bool {
		id := row[ci]
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
		return true
	}), nil
}

// AttachVariants left-joins variants onto the case log by case_id. Cases
// without events get a null variant.
func AttachVariants(caseLog *table.Table, variants map[string]string) *table.Table {
	cols := append(append([]string{}, caseLog.Columns...), VariantColumn)
	out := table.New(cols)
	out.Rows = make([][]string, len(caseLog.Rows))

	ids := caseLog.Column(CaseIDColumn)
	for r, row := range caseLog.Rows {
		cells := make([]string, len(cols))
		copy(cells, row)
		if ids != nil {
			cells[len(cols)-1] = variants[ids[r]]
		}
		out.Rows[r] = cells
	}
	return out
}
