package types

import "fmt"

// FileAccessError is returned when the input cannot be read or the output
// cannot be written.
type FileAccessError struct {
	Path string
	Op   string // "open", "read", "write", "lock", ...
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// MalformedRecordError is returned when a line is not a valid JSON object,
// or a field holds a value of the wrong JSON type.
type MalformedRecordError struct {
	Source string
	Line   int
	Field  string // empty when the whole line failed to decode
	Err    error
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s:%d: malformed field %q: %v", e.Source, e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("%s:%d: malformed record: %v", e.Source, e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// MissingFieldError is returned when a record lacks a required field.
// Field is a dotted path such as "relations[1].head_span.end".
type MissingFieldError struct {
	Source string
	Line   int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s:%d: missing required field %q", e.Source, e.Line, e.Field)
}

// InvalidSpanError is returned when span offsets fall outside the story
// text or do not describe a non-empty range.
type InvalidSpanError struct {
	Source  string
	Line    int
	Field   string
	Start   int
	End     int
	TextLen int
}

func (e *InvalidSpanError) Error() string {
	return fmt.Sprintf("%s:%d: invalid span %q [%d:%d] for text of length %d",
		e.Source, e.Line, e.Field, e.Start, e.End, e.TextLen)
}
