package export

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/untoldecay/movestories/internal/extractor"
	"github.com/untoldecay/movestories/internal/types"
	"gopkg.in/yaml.v3"
)

// Manifest records what a single export produced
type Manifest struct {
	RunID        string          `yaml:"run_id"`
	CreatedAt    time.Time       `yaml:"created_at"`
	Input        string          `yaml:"input"`
	Output       string          `yaml:"output"`
	Columns      []string        `yaml:"columns"`
	Delimiter    string          `yaml:"delimiter"`
	IncludeIndex bool            `yaml:"include_index"`
	DurationMS   int64           `yaml:"duration_ms"`
	Stats        extractor.Stats `yaml:"stats"`
}

// NewManifest describes an export of result from input to output
func NewManifest(input, output string, cfg *Config, result *extractor.ExtractionResult) *Manifest {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Manifest{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		Input:        input,
		Output:       output,
		Columns:      types.Columns,
		Delimiter:    string(cfg.Delimiter),
		IncludeIndex: cfg.IncludeIndex,
		DurationMS:   result.Duration.Milliseconds(),
		Stats:        result.Stats,
	}
}

// ManifestPath returns where the manifest for an output file is written
func ManifestPath(output string) string {
	return output + ".manifest.yaml"
}

// WriteManifest writes m as YAML to path
func WriteManifest(path string, m *Manifest) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &types.FileAccessError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	// #nosec G304 - user-provided file path is intentional
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.FileAccessError{Path: path, Op: "read", Err: err}
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
