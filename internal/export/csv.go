// Package export writes the deduplicated entity table as delimited text.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/untoldecay/movestories/internal/debug"
	"github.com/untoldecay/movestories/internal/types"
)

// ErrLocked is returned when another process is writing the same output
var ErrLocked = errors.New("output is locked by another export")

// Write serializes rows to w: a header line, then one record per row.
func Write(w io.Writer, rows []types.Row, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cw := csv.NewWriter(w)
	cw.Comma = cfg.Delimiter

	header := types.Columns
	if cfg.IncludeIndex {
		header = append([]string{""}, types.Columns...)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, 0, len(header))
	for i, r := range rows {
		record = record[:0]
		if cfg.IncludeIndex {
			record = append(record, strconv.Itoa(i))
		}
		record = append(record,
			r.EntityName,
			string(r.Type),
			strconv.Itoa(r.StartPosition),
			strconv.Itoa(r.EndPosition),
			r.OriginalText,
		)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path. The table is written to a temporary file
// in the same directory and renamed into place, so path is either left
// untouched or fully written.
func WriteFile(path string, rows []types.Row, cfg *Config) error {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return &types.FileAccessError{Path: path, Op: "lock", Err: err}
	}
	if !locked {
		return &types.FileAccessError{Path: path, Op: "lock", Err: ErrLocked}
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &types.FileAccessError{Path: path, Op: "create", Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := Write(tmp, rows, cfg); err != nil {
		return &types.FileAccessError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &types.FileAccessError{Path: path, Op: "sync", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &types.FileAccessError{Path: path, Op: "close", Err: err}
	}
	// CreateTemp uses 0600; exported tables are meant to be shared
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return &types.FileAccessError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &types.FileAccessError{Path: path, Op: "rename", Err: err}
	}
	committed = true

	debug.Logf("Debug: wrote %d rows to %s\n", len(rows), path)
	return nil
}

// Read parses a table produced by Write. A leading unnamed index column is
// detected from the header and discarded.
func Read(r io.Reader, cfg *Config) ([]types.Row, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data, restore := protectCR(data)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = cfg.Delimiter

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: missing header")
	}
	if err != nil {
		return nil, err
	}

	offset, err := headerOffset(header)
	if err != nil {
		return nil, err
	}

	rows := []types.Row{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		for i := range record {
			record[i] = restore(record[i])
		}

		start, err := strconv.Atoi(record[offset+2])
		if err != nil {
			return nil, fmt.Errorf("line %d: Start_Position: %w", line, err)
		}
		end, err := strconv.Atoi(record[offset+3])
		if err != nil {
			return nil, fmt.Errorf("line %d: End_Position: %w", line, err)
		}
		rows = append(rows, types.Row{
			EntityName:    record[offset],
			Type:          types.EntityType(record[offset+1]),
			StartPosition: start,
			EndPosition:   end,
			OriginalText:  record[offset+4],
		})
	}
	return rows, nil
}

// ReadFile reads a table previously written by WriteFile
func ReadFile(path string, cfg *Config) ([]types.Row, error) {
	// #nosec G304 - user-provided file path is intentional
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.FileAccessError{Path: path, Op: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := Read(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

func headerOffset(header []string) (int, error) {
	offset := 0
	if len(header) == len(types.Columns)+1 && header[0] == "" {
		offset = 1
	}
	if len(header)-offset != len(types.Columns) {
		return 0, fmt.Errorf("unexpected header %v", header)
	}
	for i, col := range types.Columns {
		if header[offset+i] != col {
			return 0, fmt.Errorf("unexpected column %q, want %q", header[offset+i], col)
		}
	}
	return offset, nil
}

// protectCR swaps every carriage return for a rune absent from data, since
// csv.Reader drops the \r of a quoted \r\n. Write ends records with a bare
// \n, so every \r it emits sits inside a quoted field. Tables with \r\n
// record endings were not written by Write and are read unchanged.
func protectCR(data []byte) ([]byte, func(string) string) {
	keep := func(s string) string { return s }
	if bytes.IndexByte(data, '\r') < 0 {
		return data, keep
	}
	if eol := bytes.IndexByte(data, '\n'); eol > 0 && data[eol-1] == '\r' {
		return data, keep
	}

	// Private use area
	for r := rune(0xE000); r <= 0xF8FF; r++ {
		if bytes.ContainsRune(data, r) {
			continue
		}
		sentinel := string(r)
		data = bytes.ReplaceAll(data, []byte{'\r'}, []byte(sentinel))
		return data, func(s string) string { return strings.ReplaceAll(s, sentinel, "\r") }
	}
	return data, keep
}
