// Package utils holds small string helpers shared by the CLI output.
package utils

import "strings"

// SuggestLabel returns the known label closest to label, or "" when none
// is close enough to be a plausible typo. Separators are ignored, so
// "IS-AT" and "is at" both match IS_AT.
func SuggestLabel(label string, known []string) string {
	norm := normalizeLabel(label)
	if norm == "" {
		return ""
	}
	limit := max(1, len([]rune(norm))/3)

	best, bestDist := "", limit+1
	for _, k := range known {
		d := ComputeDistance(norm, normalizeLabel(k))
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func normalizeLabel(s string) string {
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(s))
}
