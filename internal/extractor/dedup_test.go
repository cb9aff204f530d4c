package extractor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/untoldecay/movestories/internal/types"
)

func row(name string, typ types.EntityType, start, end int, text string) types.Row {
	return types.Row{EntityName: name, Type: typ, StartPosition: start, EndPosition: end, OriginalText: text}
}

func TestFlattenPreservesStoryOrder(t *testing.T) {
	a := row("A", types.EntityPerson, 0, 1, "A b")
	b := row("b", types.EntityOrg, 2, 3, "A b")
	c := row("C", types.EntityPerson, 0, 1, "C")

	got := Flatten([][]types.Row{{a, b}, nil, {c, a}})
	want := []types.Row{a, b, c, a}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}
}

func TestDedup(t *testing.T) {
	jane := row("Jane", types.EntityPerson, 0, 4, "Jane joined Acme")
	acme := row("Acme", types.EntityOrg, 12, 16, "Jane joined Acme")
	janeOtherText := row("Jane", types.EntityPerson, 0, 4, "Jane left Acme")
	janeOtherType := row("Jane", types.EntityPronoun, 0, 4, "Jane joined Acme")

	tests := []struct {
		name  string
		input []types.Row
		want  []types.Row
	}{
		{
			name:  "empty",
			input: nil,
			want:  []types.Row{},
		},
		{
			name:  "no duplicates",
			input: []types.Row{jane, acme},
			want:  []types.Row{jane, acme},
		},
		{
			name:  "keeps first occurrence order",
			input: []types.Row{acme, jane, acme, jane, acme},
			want:  []types.Row{acme, jane},
		},
		{
			name:  "different source text is a different row",
			input: []types.Row{jane, janeOtherText, jane},
			want:  []types.Row{jane, janeOtherText},
		},
		{
			name:  "different type is a different row",
			input: []types.Row{janeOtherType, jane},
			want:  []types.Row{janeOtherType, jane},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedup(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Dedup() mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(got, Dedup(got)); diff != "" {
				t.Errorf("Dedup() not idempotent:\n%s", diff)
			}
		})
	}
}

func TestDedupDoesNotModifyInput(t *testing.T) {
	a := row("A", types.EntityPerson, 0, 1, "A")
	input := []types.Row{a, a, a}
	_ = Dedup(input)
	if len(input) != 3 || input[2] != a {
		t.Errorf("input modified: %+v", input)
	}
}
