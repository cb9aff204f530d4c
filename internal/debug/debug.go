// Package debug provides verbose diagnostics for movestories.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

var (
	enabled atomic.Bool
	out     io.Writer = os.Stderr
)

func init() {
	if os.Getenv("MOVES_DEBUG") != "" {
		enabled.Store(true)
	}
}

// Enabled reports whether debug output is on
func Enabled() bool {
	return enabled.Load()
}

// SetVerbose turns debug output on or off (--verbose overrides MOVES_DEBUG)
func SetVerbose(v bool) {
	enabled.Store(v)
}

// SetOutput redirects debug output. Used by tests.
func SetOutput(w io.Writer) {
	out = w
}

// Logf prints a debug message to stderr when debugging is enabled
func Logf(format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}
	fmt.Fprintf(out, format, args...)
}
