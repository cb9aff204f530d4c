package extractor

import "github.com/untoldecay/movestories/internal/types"

// Flatten concatenates per-story row slices in story order
func Flatten(perStory [][]types.Row) []types.Row {
	total := 0
	for _, rows := range perStory {
		total += len(rows)
	}
	flat := make([]types.Row, 0, total)
	for _, rows := range perStory {
		flat = append(flat, rows...)
	}
	return flat
}

// Dedup drops rows equal on all fields to an earlier row, keeping the
// first occurrence of each in its original position. The input is not
// modified.
func Dedup(rows []types.Row) []types.Row {
	seen := make(map[types.Row]struct{}, len(rows))
	unique := make([]types.Row, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}
