// Package types defines core data structures for move stories and the
// entity table exported from them.
package types

import (
	"time"
	"unicode/utf8"
)

// EntityType is the label of an annotated span
type EntityType string

// Entity types
const (
	EntityPerson   EntityType = "PERSON"
	EntityOrg      EntityType = "ORG"
	EntityPosition EntityType = "POSITION"
	EntityPronoun  EntityType = "PRONOUN"
)

// KnownEntityTypes lists the entity labels of the annotation scheme
var KnownEntityTypes = []EntityType{EntityPerson, EntityOrg, EntityPosition, EntityPronoun}

// IsValid checks if the entity type value is one of the known labels
func (t EntityType) IsValid() bool {
	switch t {
	case EntityPerson, EntityOrg, EntityPosition, EntityPronoun:
		return true
	}
	return false
}

// RelationType is the label linking two entities in a story
type RelationType string

// Relation types
const (
	RelWillHavePosition   RelationType = "WILL_HAVE_POSITION"
	RelIsEndingPosition   RelationType = "IS_ENDING_POSITION"
	RelHasOngoingPosition RelationType = "HAS_ONGOING_POSITION"
	RelHadPosition        RelationType = "HAD_POSITION"
	RelAt                 RelationType = "AT"
	RelWillJoin           RelationType = "WILL_JOIN"
	RelIsLeaving          RelationType = "IS_LEAVING"
	RelIsAt               RelationType = "IS_AT"
	RelHadPositionAt      RelationType = "HAD_POSITION_AT"
	RelHasPronoun         RelationType = "HAS_PRONOUN"
	RelReportsTo          RelationType = "REPORTS_TO"
)

// KnownRelationTypes lists the relation labels of the annotation scheme
var KnownRelationTypes = []RelationType{
	RelWillHavePosition, RelIsEndingPosition, RelHasOngoingPosition, RelHadPosition,
	RelAt, RelWillJoin, RelIsLeaving, RelIsAt, RelHadPositionAt, RelHasPronoun, RelReportsTo,
}

// IsValid checks if the relation type value is one of the known labels
func (t RelationType) IsValid() bool {
	switch t {
	case RelWillHavePosition, RelIsEndingPosition, RelHasOngoingPosition, RelHadPosition,
		RelAt, RelWillJoin, RelIsLeaving, RelIsAt, RelHadPositionAt, RelHasPronoun, RelReportsTo:
		return true
	}
	return false
}

// Entity is a typed span of a story's text. Offsets are character (rune)
// offsets forming the half-open interval [StartInText, EndInText).
type Entity struct {
	Name        string     `json:"name"`
	Type        EntityType `json:"type"`
	StartInText int        `json:"start_in_text"`
	EndInText   int        `json:"end_in_text"`
}

// Relation links two entities of the same story
type Relation struct {
	Entity1   Entity       `json:"entity_1"`
	Entity2   Entity       `json:"entity_2"`
	Type      RelationType `json:"type"`
	EntryDate *time.Time   `json:"entry_date,omitempty"` // never populated from annotations
}

// Story is one annotated narrative: its source text plus the relations
// found in it, in input order.
type Story struct {
	Text      string     `json:"text"`
	Relations []Relation `json:"relations"`
}

// TextLen returns the length of the story text in characters
func (s Story) TextLen() int {
	return utf8.RuneCountInString(s.Text)
}

// Row is one line of the exported entity table. Rows are comparable and
// two rows are duplicates only when every field matches.
type Row struct {
	EntityName    string     `json:"entity_name"`
	Type          EntityType `json:"type"`
	StartPosition int        `json:"start_position"`
	EndPosition   int        `json:"end_position"`
	OriginalText  string     `json:"original_text"`
}

// Column headers of the exported entity table, in order
var Columns = []string{"Entity_Name", "Type", "Start_Position", "End_Position", "Original_Text"}

// RowFromEntity pairs an entity with the text of the story it came from
func RowFromEntity(e Entity, text string) Row {
	return Row{
		EntityName:    e.Name,
		Type:          e.Type,
		StartPosition: e.StartInText,
		EndPosition:   e.EndInText,
		OriginalText:  text,
	}
}
