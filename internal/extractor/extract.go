package extractor

import "github.com/untoldecay/movestories/internal/types"

// ExtractRows projects every entity referenced by the story's relations
// into table rows: for each relation in order, entity 1 then entity 2.
// Duplicates within the story are kept.
func ExtractRows(story types.Story) []types.Row {
	rows := make([]types.Row, 0, 2*len(story.Relations))
	for _, rel := range story.Relations {
		rows = append(rows,
			types.RowFromEntity(rel.Entity1, story.Text),
			types.RowFromEntity(rel.Entity2, story.Text),
		)
	}
	return rows
}
