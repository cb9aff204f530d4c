package jsonl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/untoldecay/movestories/internal/types"
)

func TestReadPreservesLineOrder(t *testing.T) {
	input := `{"text": "first", "relations": []}

{"text": "second", "relations": []}

{"text": "third", "relations": []}
`
	records, err := Read(strings.NewReader(input), "stories.jsonl")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	wantLines := []int{1, 3, 5}
	wantText := []string{`"first"`, `"second"`, `"third"`}
	for i, rec := range records {
		if rec.LineNumber != wantLines[i] {
			t.Errorf("record %d: LineNumber = %d, want %d", i, rec.LineNumber, wantLines[i])
		}
		if string(rec.Fields["text"]) != wantText[i] {
			t.Errorf("record %d: text = %s, want %s", i, rec.Fields["text"], wantText[i])
		}
		if rec.Source != "stories.jsonl" {
			t.Errorf("record %d: Source = %q", i, rec.Source)
		}
	}
}

func TestReadEmptyInput(t *testing.T) {
	records, err := Read(strings.NewReader(""), "empty.jsonl")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestReadMalformedLineFailsWholeRead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"invalid json", "{\"text\": \"ok\", \"relations\": []}\n{not json}\n", 2},
		{"array instead of object", "[1, 2, 3]\n", 1},
		{"null record", "\n\nnull\n", 3},
		{"truncated object", `{"text": "Jane"`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Read(strings.NewReader(tt.input), "bad.jsonl")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if records != nil {
				t.Errorf("expected no records on error, got %d", len(records))
			}
			var malformed *types.MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedRecordError, got %T: %v", err, err)
			}
			if malformed.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", malformed.Line, tt.wantLine)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stories.jsonl")
	content := `{"text": "Jane joined Acme as CEO", "relations": []}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	records, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(records) != 1 || records[0].Source != path {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestReadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonl")

	_, err := ReadFile(path)
	var accessErr *types.FileAccessError
	if !errors.As(err, &accessErr) {
		t.Fatalf("expected FileAccessError, got %T: %v", err, err)
	}
	if accessErr.Path != path || accessErr.Op != "open" {
		t.Errorf("unexpected error context: %+v", accessErr)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("expected error to wrap os.ErrNotExist")
	}
}

func TestReadLongLine(t *testing.T) {
	text := strings.Repeat("a", 200*1024)
	input := `{"text": "` + text + `", "relations": []}`

	records, err := Read(strings.NewReader(input), "long.jsonl")
	if err != nil {
		t.Fatalf("Read failed on long line: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}
