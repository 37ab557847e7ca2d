package core

import "strings"

// VariantSeparator joins activities in a variant string.
const VariantSeparator = " > "

// Variants concatenates each case's activities in event order. Events must
// already be sorted, as LongEvents returns them. Only cases with at least
// one event appear in the result.
func Variants(events []Event) map[string]string {
	seq := make(map[string][]string)
	for _, e := range events {
		seq[e.CaseID] = append(seq[e.CaseID], e.Activity)
	}

	out := make(map[string]string, len(seq))
	for id, acts := range seq {
		out[id] = strings.Join(acts, VariantSeparator)
	}
	return out
}
