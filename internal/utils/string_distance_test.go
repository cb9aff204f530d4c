package utils

import "testing"

func TestComputeDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "ORG", 3},
		{"PERSON", "", 6},
		{"PERSON", "person", 0},
		{"PERSN", "PERSON", 1},
		{"kitten", "sitting", 3},
		{"café", "cafe", 1},
		{"ORG", "POSITION", 7},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"/"+tt.s2, func(t *testing.T) {
			if got := ComputeDistance(tt.s1, tt.s2); got != tt.want {
				t.Errorf("ComputeDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, got, tt.want)
			}
			if got := ComputeDistance(tt.s2, tt.s1); got != tt.want {
				t.Errorf("ComputeDistance(%q, %q) = %d; want %d (symmetry)", tt.s2, tt.s1, got, tt.want)
			}
		})
	}
}

func TestSuggestLabel(t *testing.T) {
	known := []string{"PERSON", "ORG", "POSITION", "PRONOUN", "IS_AT", "IS_LEAVING", "WILL_JOIN"}

	tests := []struct {
		label string
		want  string
	}{
		{"PERSN", "PERSON"},
		{"person", "PERSON"},
		{"IS-AT", "IS_AT"},
		{"is at", "IS_AT"},
		{"WILL_JION", "WILL_JOIN"},
		{"COMPANY", ""},
		{"MARRIED_TO", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := SuggestLabel(tt.label, known); got != tt.want {
				t.Errorf("SuggestLabel(%q) = %q; want %q", tt.label, got, tt.want)
			}
		})
	}
}
