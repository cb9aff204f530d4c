// Package ui provides terminal styling and output helpers for the movestories CLI.
package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is the table width used when output is not a terminal
const DefaultWidth = 100

// fder is implemented by *os.File
type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w writes to a terminal. Buffers, pipes and
// regular files do not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor reports whether output written to w may carry ANSI colors.
// NO_COLOR or CLICOLOR=0 turn color off and CLICOLOR_FORCE keeps it on when
// w is redirected.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal(w)
}

// Width returns how many columns tables written to w may use
func Width(w io.Writer) int {
	f, ok := w.(fder)
	if !ok {
		return DefaultWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 0 {
		return DefaultWidth
	}
	return cols
}
