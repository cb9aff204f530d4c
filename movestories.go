// Package movestories converts annotated move stories (relation annotations
// exported as JSON Lines) into a deduplicated table of entity occurrences.
//
// The pipeline is a single batch pass: read every record, parse each into a
// Story, extract the two entities of every relation, flatten and
// deduplicate the rows, and write them as delimited text. Nothing is
// written unless every step before the export succeeds.
package movestories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/untoldecay/movestories/internal/export"
	"github.com/untoldecay/movestories/internal/extractor"
	"github.com/untoldecay/movestories/internal/jsonl"
	"github.com/untoldecay/movestories/internal/types"
)

// Core types from internal/types
type (
	Entity       = types.Entity
	EntityType   = types.EntityType
	Relation     = types.Relation
	RelationType = types.RelationType
	Story        = types.Story
	Row          = types.Row
)

// Error kinds
type (
	FileAccessError      = types.FileAccessError
	MalformedRecordError = types.MalformedRecordError
	MissingFieldError    = types.MissingFieldError
	InvalidSpanError     = types.InvalidSpanError
)

// Pipeline types
type (
	Stats        = extractor.Stats
	ExportConfig = export.Config
)

// Entity types
const (
	EntityPerson   = types.EntityPerson
	EntityOrg      = types.EntityOrg
	EntityPosition = types.EntityPosition
	EntityPronoun  = types.EntityPronoun
)

// Relation types
const (
	RelWillHavePosition   = types.RelWillHavePosition
	RelIsEndingPosition   = types.RelIsEndingPosition
	RelHasOngoingPosition = types.RelHasOngoingPosition
	RelHadPosition        = types.RelHadPosition
	RelAt                 = types.RelAt
	RelWillJoin           = types.RelWillJoin
	RelIsLeaving          = types.RelIsLeaving
	RelIsAt               = types.RelIsAt
	RelHadPositionAt      = types.RelHadPositionAt
	RelHasPronoun         = types.RelHasPronoun
	RelReportsTo          = types.RelReportsTo
)

// Columns of the exported table, in order
var Columns = types.Columns

// ErrManifest marks a run whose table was exported but whose manifest could
// not be written. Run returns the Result together with the error.
var ErrManifest = errors.New("manifest not written")

// StdinPath makes Run read records from Options.Stdin
const StdinPath = "-"

// Options configures one run
type Options struct {
	InputPath  string
	OutputPath string

	// Export controls delimiter, index column and manifest; nil uses defaults
	Export *ExportConfig

	// Workers parses stories concurrently when > 1
	Workers int

	// Stdin is read when InputPath is StdinPath; defaults to os.Stdin
	Stdin io.Reader
}

// Result describes a completed run
type Result struct {
	Rows         []Row
	Stats        Stats
	OutputPath   string
	ManifestPath string
	Duration     time.Duration
}

// Run reads InputPath, builds the deduplicated entity table and writes it
// to OutputPath. When only the manifest fails, the table is already in
// place and the error wraps ErrManifest.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.OutputPath == "" {
		return nil, errors.New("no output path configured")
	}
	cfg := opts.Export
	if cfg == nil {
		cfg = export.DefaultConfig()
	}

	start := time.Now()
	extracted, err := extract(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := export.WriteFile(opts.OutputPath, extracted.Unique, cfg); err != nil {
		return nil, err
	}

	res := &Result{
		Rows:       extracted.Unique,
		Stats:      extracted.Stats,
		OutputPath: opts.OutputPath,
	}

	if cfg.WriteManifest {
		path := export.ManifestPath(opts.OutputPath)
		m := export.NewManifest(opts.InputPath, opts.OutputPath, cfg, extracted)
		if err := export.WriteManifest(path, m); err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("%w: %w", ErrManifest, err)
		}
		res.ManifestPath = path
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Preview runs the pipeline without writing anything and returns the
// deduplicated rows.
func Preview(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	extracted, err := extract(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Rows:     extracted.Unique,
		Stats:    extracted.Stats,
		Duration: time.Since(start),
	}, nil
}

func extract(ctx context.Context, opts Options) (*extractor.ExtractionResult, error) {
	if opts.InputPath == "" {
		return nil, errors.New("no input path configured")
	}

	var (
		records []jsonl.Record
		err     error
	)
	if opts.InputPath == StdinPath {
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		records, err = jsonl.Read(in, "<stdin>")
	} else {
		records, err = jsonl.ReadFile(opts.InputPath)
	}
	if err != nil {
		return nil, err
	}

	return extractor.NewPipeline(extractor.WithWorkers(opts.Workers)).Run(ctx, records)
}
