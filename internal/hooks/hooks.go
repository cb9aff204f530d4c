// Package hooks provides a hook system for extensibility.
// Hooks are executable scripts in .movestories/hooks/ that run after an
// export finishes.
package hooks

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/untoldecay/movestories/internal/extractor"
)

// Event types
const (
	EventExport       = "export"
	EventExportFailed = "export_failed"
)

// Hook file names
const (
	HookOnExport       = "on_export"
	HookOnExportFailed = "on_export_failed"
)

// DefaultTimeout bounds a single hook run
const DefaultTimeout = 10 * time.Second

// Payload is written to the hook's stdin as JSON
type Payload struct {
	Event    string           `json:"event"`
	Input    string           `json:"input"`
	Output   string           `json:"output"`
	Manifest string           `json:"manifest,omitempty"`
	Stats    *extractor.Stats `json:"stats,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Runner handles hook execution
type Runner struct {
	hooksDir string
	timeout  time.Duration
}

// NewRunner creates a new hook runner.
// hooksDir is typically .movestories/hooks/ relative to the project root.
func NewRunner(hooksDir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		hooksDir: hooksDir,
		timeout:  timeout,
	}
}

// RunSync executes the hook for event and waits for it. A missing or
// non-executable hook is skipped silently. The hook is invoked as
// `<hook> <output> <event>` with the payload on stdin.
func (r *Runner) RunSync(ctx context.Context, event string, p Payload) error {
	hookPath, ok := r.hookPath(event)
	if !ok {
		return nil
	}
	p.Event = event
	return r.runHook(ctx, hookPath, event, p)
}

// HookExists checks if a hook exists for an event
func (r *Runner) HookExists(event string) bool {
	_, ok := r.hookPath(event)
	return ok
}

func (r *Runner) hookPath(event string) (string, bool) {
	hookName := eventToHook(event)
	if hookName == "" || r.hooksDir == "" {
		return "", false
	}

	hookPath := filepath.Join(r.hooksDir, hookName)
	info, err := os.Stat(hookPath)
	if err != nil || info.IsDir() {
		return "", false
	}

	// Check if executable (Unix)
	if info.Mode()&0111 == 0 {
		return "", false
	}
	return hookPath, true
}

func eventToHook(event string) string {
	switch event {
	case EventExport:
		return HookOnExport
	case EventExportFailed:
		return HookOnExportFailed
	default:
		return ""
	}
}
