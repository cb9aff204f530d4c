package extractor

import (
	"encoding/json"
	"fmt"

	"github.com/untoldecay/movestories/internal/jsonl"
	"github.com/untoldecay/movestories/internal/types"
)

// ParseStory converts one annotation record into a Story. Entity names are
// sliced out of the story text using the span offsets; any name the
// annotation tool stored alongside the span is ignored.
func ParseStory(rec jsonl.Record) (types.Story, error) {
	p := recordParser{rec: rec}

	relationsRaw, err := p.require(rec.Fields, "relations")
	if err != nil {
		return types.Story{}, err
	}
	textRaw, err := p.require(rec.Fields, "text")
	if err != nil {
		return types.Story{}, err
	}

	var text string
	if err := p.decode(textRaw, "text", &text); err != nil {
		return types.Story{}, err
	}

	var relations []map[string]json.RawMessage
	if err := p.decode(relationsRaw, "relations", &relations); err != nil {
		return types.Story{}, err
	}

	runes := []rune(text)
	story := types.Story{
		Text:      text,
		Relations: make([]types.Relation, 0, len(relations)),
	}
	for i, fields := range relations {
		rel, err := p.parseRelation(fields, fmt.Sprintf("relations[%d]", i), runes)
		if err != nil {
			return types.Story{}, err
		}
		story.Relations = append(story.Relations, rel)
	}

	return story, nil
}

type recordParser struct {
	rec jsonl.Record
}

func (p recordParser) parseRelation(fields map[string]json.RawMessage, path string, text []rune) (types.Relation, error) {
	labelRaw, err := p.require(fields, path+".label")
	if err != nil {
		return types.Relation{}, err
	}
	headRaw, err := p.require(fields, path+".head_span")
	if err != nil {
		return types.Relation{}, err
	}
	childRaw, err := p.require(fields, path+".child_span")
	if err != nil {
		return types.Relation{}, err
	}

	var label string
	if err := p.decode(labelRaw, path+".label", &label); err != nil {
		return types.Relation{}, err
	}

	head, err := p.parseSpan(headRaw, path+".head_span", text)
	if err != nil {
		return types.Relation{}, err
	}
	child, err := p.parseSpan(childRaw, path+".child_span", text)
	if err != nil {
		return types.Relation{}, err
	}

	return types.Relation{
		Entity1: head,
		Entity2: child,
		Type:    types.RelationType(label),
	}, nil
}

func (p recordParser) parseSpan(raw json.RawMessage, path string, text []rune) (types.Entity, error) {
	var fields map[string]json.RawMessage
	if err := p.decode(raw, path, &fields); err != nil {
		return types.Entity{}, err
	}

	startRaw, err := p.require(fields, path+".start")
	if err != nil {
		return types.Entity{}, err
	}
	endRaw, err := p.require(fields, path+".end")
	if err != nil {
		return types.Entity{}, err
	}
	labelRaw, err := p.require(fields, path+".label")
	if err != nil {
		return types.Entity{}, err
	}

	var start, end int
	var label string
	if err := p.decode(startRaw, path+".start", &start); err != nil {
		return types.Entity{}, err
	}
	if err := p.decode(endRaw, path+".end", &end); err != nil {
		return types.Entity{}, err
	}
	if err := p.decode(labelRaw, path+".label", &label); err != nil {
		return types.Entity{}, err
	}

	if start < 0 || end > len(text) || start >= end {
		return types.Entity{}, &types.InvalidSpanError{
			Source:  p.rec.Source,
			Line:    p.rec.LineNumber,
			Field:   path,
			Start:   start,
			End:     end,
			TextLen: len(text),
		}
	}

	return types.Entity{
		Name:        string(text[start:end]),
		Type:        types.EntityType(label),
		StartInText: start,
		EndInText:   end,
	}, nil
}

// require returns the raw value of key, treating JSON null as absent.
// path is the dotted field path reported on error; its last segment is key.
func (p recordParser) require(fields map[string]json.RawMessage, path string) (json.RawMessage, error) {
	raw, ok := fields[lastSegment(path)]
	if !ok || string(raw) == "null" {
		return nil, &types.MissingFieldError{Source: p.rec.Source, Line: p.rec.LineNumber, Field: path}
	}
	return raw, nil
}

func (p recordParser) decode(raw json.RawMessage, path string, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &types.MalformedRecordError{Source: p.rec.Source, Line: p.rec.LineNumber, Field: path, Err: err}
	}
	return nil
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}
