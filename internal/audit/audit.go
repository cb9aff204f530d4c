// Package audit keeps an append-only history of export runs as JSON Lines.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Entry kinds
const (
	KindExport       = "export"
	KindExportFailed = "export_failed"
)

// Entry is one run in the history file
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`

	Input    string `json:"input"`
	Output   string `json:"output"`
	Manifest string `json:"manifest,omitempty"`

	Stories    int   `json:"stories,omitempty"`
	Rows       int   `json:"rows,omitempty"`
	Duplicates int   `json:"duplicates,omitempty"`
	DurationMS int64 `json:"duration_ms,omitempty"`

	Error string `json:"error,omitempty"`
}

// Append appends e to the history file at path as a single JSON line,
// creating the file and its directory if needed. ID and CreatedAt are
// filled in when empty.
func Append(path string, e *Entry) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil entry")
	}
	if e.Kind == "" {
		return "", fmt.Errorf("kind is required")
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // nolint:gosec // intended permissions
	if err != nil {
		return "", fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("failed to write history entry: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush history: %w", err)
	}

	return e.ID, nil
}

// Read returns every entry of the history file, oldest first. A missing
// file is an empty history.
func Read(path string) ([]Entry, error) {
	// #nosec G304 - configured history path
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	dec := json.NewDecoder(f)
	for {
		var e Entry
		err := dec.Decode(&e)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("corrupt history %s after %d entries: %w", path, len(entries), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
