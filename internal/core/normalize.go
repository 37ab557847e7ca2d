package core

import (
	"strings"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/table"
)

// duplicateMarker is matched as a substring of the lowercased disposition.
const duplicateMarker = "duplicate incident"

// NormalizeStats describes what Normalize changed.
type NormalizeStats struct {
	DispositionColumn string // empty when no disposition column exists
	DuplicatesRemoved int
}

// StandardizeColumns trims, lowercases and replaces spaces with
// underscores, then makes the names unique. It is idempotent.
func StandardizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c)), " ", "_")
	}
	return table.UniqueNames(out)
}

// DispositionColumn returns the first column whose name contains
// "disposition". Later matches are ignored.
func DispositionColumn(cols []string) (string, bool) {
	for _, c := range cols {
		if strings.Contains(c, "disposition") {
			return c, true
		}
	}
	return "", false
}

// IsDuplicateIncident reports whether a disposition cell marks a duplicate.
func IsDuplicateIncident(cell string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(cell)), duplicateMarker)
}

// RemoveDuplicateIncidents drops rows whose disposition cell contains
// "duplicate incident" and returns how many were removed. Without a
// disposition column the table is returned unchanged.
func RemoveDuplicateIncidents(t *table.Table) (*table.Table, int) {
	col, ok := DispositionColumn(t.Columns)
	if !ok {
		return t, 0
	}
	i := t.Index(col)

	out := t.Filter(func(row []string) bool {
		return !IsDuplicateIncident(row[i])
	})
	return out, t.Len() - out.Len()
}

// Normalize standardizes the header and removes duplicate incidents. The
// input table is never modified.
func Normalize(t *table.Table) (*table.Table, NormalizeStats) {
	std := &table.Table{Columns: StandardizeColumns(t.Columns), Rows: t.Rows}

	var stats NormalizeStats
	if col, ok := DispositionColumn(std.Columns); ok {
		stats.DispositionColumn = col
	}

	out, removed := RemoveDuplicateIncidents(std)
	stats.DuplicatesRemoved = removed
	return out, stats
}
