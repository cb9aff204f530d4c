// Package jsonl reads annotation exports in JSON Lines format (one JSON
// object per line).
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/untoldecay/movestories/internal/debug"
	"github.com/untoldecay/movestories/internal/types"
)

// maxLineSize bounds a single record. Stories with long source text easily
// exceed bufio's 64KB default.
const maxLineSize = 64 * 1024 * 1024

// Record is one decoded line: the top-level object's fields, undecoded.
type Record struct {
	Source     string
	LineNumber int
	Fields     map[string]json.RawMessage
}

// ReadFile reads every record from the JSONL file at path. The whole file
// is materialized before returning.
func ReadFile(path string) ([]Record, error) {
	// #nosec G304 - user-provided file path is intentional
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.FileAccessError{Path: path, Op: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	return Read(f, path)
}

// Read reads every record from r. source names the input in error messages.
func Read(r io.Reader, source string) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())

		// Skip empty lines
		if len(line) == 0 {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(line, &fields); err != nil {
			return nil, &types.MalformedRecordError{Source: source, Line: lineNum, Err: err}
		}
		if fields == nil {
			// The literal null decodes into a nil map
			return nil, &types.MalformedRecordError{Source: source, Line: lineNum, Err: errors.New("record is null, expected an object")}
		}

		records = append(records, Record{Source: source, LineNumber: lineNum, Fields: fields})
	}

	if err := scanner.Err(); err != nil {
		return nil, &types.FileAccessError{Path: source, Op: "read", Err: err}
	}

	debug.Logf("Debug: read %d records from %s (%d lines)\n", len(records), source, lineNum)
	return records, nil
}
