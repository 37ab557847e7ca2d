package table

import "strconv"

// UniqueNames makes column names unique the way spreadsheet tools do it:
// the first occurrence keeps its name and later repeats get ".1", ".2", ...
// in order of appearance, skipping any suffix that is already taken.
func UniqueNames(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		next, dup := seen[n]
		if !dup {
			seen[n] = 1
			out[i] = n
			continue
		}

		for {
			cand := n + "." + strconv.Itoa(next)
			next++
			if !taken[cand] {
				taken[cand] = true
				out[i] = cand
				break
			}
		}
		seen[n] = next
	}
	return out
}
