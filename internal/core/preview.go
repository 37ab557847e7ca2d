package core

// TablePreview is the head of a table for display.
type TablePreview struct {
	Name      string     `json:"name"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
	Truncated bool       `json:"truncated"`
}

// ResultSummary describes a finished run without its full tables.
type ResultSummary struct {
	RunID            string         `json:"runId"`
	Layer            Layer          `json:"layer"`
	Stats            Stats          `json:"stats"`
	Warnings         []Warning      `json:"warnings"`
	Artifacts        []TablePreview `json:"artifacts"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// DefaultPreviewRows is the number of rows shown per artifact.
const DefaultPreviewRows = 20

// Summarize builds a ResultSummary showing at most limit rows of each
// artifact. A limit of zero or less uses DefaultPreviewRows.
func Summarize(res *Result, limit int) ResultSummary {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}

	sum := ResultSummary{
		RunID:            res.RunID,
		Layer:            res.Layer,
		Stats:            res.Stats,
		Warnings:         res.Warnings,
		Artifacts:        make([]TablePreview, 0, len(res.Artifacts)),
		ProcessingTimeMs: res.Duration.Milliseconds(),
	}
	if sum.Warnings == nil {
		sum.Warnings = []Warning{}
	}

	for _, a := range res.Artifacts {
		n := min(a.Table.Len(), limit)
		rows := make([][]string, n)
		for i := range n {
			rows[i] = append([]string(nil), a.Table.Rows[i]...)
		}
		sum.Artifacts = append(sum.Artifacts, TablePreview{
			Name:      a.Name,
			Columns:   append([]string(nil), a.Table.Columns...),
			Rows:      rows,
			TotalRows: a.Table.Len(),
			Truncated: a.Table.Len() > n,
		})
	}
	return sum
}
