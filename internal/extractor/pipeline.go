package extractor

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/untoldecay/movestories/internal/debug"
	"github.com/untoldecay/movestories/internal/jsonl"
	"github.com/untoldecay/movestories/internal/types"
	"golang.org/x/sync/errgroup"
)

type Pipeline struct {
	workers int
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithWorkers parses stories on up to n goroutines. Results are always
// re-joined in input order, so the output does not depend on n.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stats summarizes a pipeline run
type Stats struct {
	Records          int                      `yaml:"records" json:"records"`
	Relations        int                      `yaml:"relations" json:"relations"`
	RowsExtracted    int                      `yaml:"rows_extracted" json:"rows_extracted"`
	RowsUnique       int                      `yaml:"rows_unique" json:"rows_unique"`
	Duplicates       int                      `yaml:"duplicates" json:"duplicates"`
	EntityTypes      map[types.EntityType]int `yaml:"entity_types" json:"entity_types"`
	UnknownEntities  int                      `yaml:"unknown_entity_labels" json:"unknown_entity_labels"`
	UnknownRelations int                      `yaml:"unknown_relation_labels" json:"unknown_relation_labels"`

	// UnknownLabels holds the distinct unknown entity and relation labels, sorted
	UnknownLabels []string `yaml:"unknown_labels,omitempty" json:"unknown_labels,omitempty"`
}

// ExtractionResult contains the parsed stories, the flattened rows and the
// deduplicated table
type ExtractionResult struct {
	Stories  []types.Story
	Rows     []types.Row
	Unique   []types.Row
	Stats    Stats
	Duration time.Duration
}

// Run parses every record, extracts entity rows and deduplicates them. The
// first failing record (by input position) aborts the run.
func (p *Pipeline) Run(ctx context.Context, records []jsonl.Record) (*ExtractionResult, error) {
	start := time.Now()

	stories, err := p.parseAll(ctx, records)
	if err != nil {
		return nil, err
	}

	perStory := make([][]types.Row, len(stories))
	for i, s := range stories {
		perStory[i] = ExtractRows(s)
	}
	rows := Flatten(perStory)
	unique := Dedup(rows)

	result := &ExtractionResult{
		Stories:  stories,
		Rows:     rows,
		Unique:   unique,
		Stats:    collectStats(stories, rows, unique),
		Duration: time.Since(start),
	}
	debug.Logf("Debug: pipeline parsed %d stories, %d rows, %d unique in %v\n",
		len(stories), len(rows), len(unique), result.Duration)
	return result, nil
}

func (p *Pipeline) parseAll(ctx context.Context, records []jsonl.Record) ([]types.Story, error) {
	stories := make([]types.Story, len(records))

	if p.workers <= 1 || len(records) < 2 {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s, err := ParseStory(rec)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			stories[i] = s
		}
		return stories, nil
	}

	// Parse failures do not cancel the other workers: every record is
	// parsed so the reported failure is the earliest one in the input, as in
	// the sequential path.
	errs := make([]error, len(records))
	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := ParseStory(records[i])
			if err != nil {
				errs[i] = fmt.Errorf("record %d: %w", i, err)
				return nil
			}
			stories[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return stories, nil
}

func collectStats(stories []types.Story, rows, unique []types.Row) Stats {
	st := Stats{
		Records:       len(stories),
		RowsExtracted: len(rows),
		RowsUnique:    len(unique),
		Duplicates:    len(rows) - len(unique),
		EntityTypes:   make(map[types.EntityType]int),
	}
	unknown := make(map[string]struct{})
	for _, s := range stories {
		st.Relations += len(s.Relations)
		for _, rel := range s.Relations {
			if !rel.Type.IsValid() {
				st.UnknownRelations++
				unknown[string(rel.Type)] = struct{}{}
			}
		}
	}
	for _, r := range unique {
		st.EntityTypes[r.Type]++
		if !r.Type.IsValid() {
			st.UnknownEntities++
			unknown[string(r.Type)] = struct{}{}
		}
	}
	if len(unknown) > 0 {
		st.UnknownLabels = slices.Sorted(maps.Keys(unknown))
	}
	return st
}
