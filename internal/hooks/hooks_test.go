package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/untoldecay/movestories/internal/extractor"
)

func writeHook(t *testing.T, dir, name, script string, mode os.FileMode) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell hooks are not supported on Windows")
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), mode); err != nil {
		t.Fatalf("Failed to create hook file: %v", err)
	}
}

func TestNewRunner(t *testing.T) {
	runner := NewRunner("/tmp/hooks", 0)
	if runner.hooksDir != "/tmp/hooks" {
		t.Errorf("hooksDir = %q, want %q", runner.hooksDir, "/tmp/hooks")
	}
	if runner.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", runner.timeout, DefaultTimeout)
	}
	if got := NewRunner("/tmp/hooks", time.Second).timeout; got != time.Second {
		t.Errorf("timeout = %v, want 1s", got)
	}
}

func TestEventToHook(t *testing.T) {
	tests := []struct {
		event    string
		expected string
	}{
		{EventExport, HookOnExport},
		{EventExportFailed, HookOnExportFailed},
		{"unknown", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			if result := eventToHook(tt.event); result != tt.expected {
				t.Errorf("eventToHook(%q) = %q, want %q", tt.event, result, tt.expected)
			}
		})
	}
}

func TestHookExists(t *testing.T) {
	tmpDir := t.TempDir()
	runner := NewRunner(tmpDir, 0)

	if runner.HookExists(EventExport) {
		t.Error("HookExists returned true for non-existent hook")
	}

	writeHook(t, tmpDir, HookOnExport, "#!/bin/sh\necho test", 0644)
	if runner.HookExists(EventExport) {
		t.Error("HookExists returned true for non-executable hook")
	}

	if err := os.Chmod(filepath.Join(tmpDir, HookOnExport), 0755); err != nil {
		t.Fatal(err)
	}
	if !runner.HookExists(EventExport) {
		t.Error("HookExists returned false for executable hook")
	}

	if err := os.MkdirAll(filepath.Join(tmpDir, HookOnExportFailed), 0755); err != nil {
		t.Fatal(err)
	}
	if runner.HookExists(EventExportFailed) {
		t.Error("HookExists returned true for directory")
	}
}

func TestRunSync_NoHook(t *testing.T) {
	runner := NewRunner(t.TempDir(), 0)
	if err := runner.RunSync(context.Background(), EventExport, Payload{Output: "out.csv"}); err != nil {
		t.Errorf("RunSync returned error for non-existent hook: %v", err)
	}
	if err := NewRunner("", 0).RunSync(context.Background(), EventExport, Payload{}); err != nil {
		t.Errorf("RunSync returned error without hooks dir: %v", err)
	}
}

func TestRunSync_ArgumentsAndPayload(t *testing.T) {
	tmpDir := t.TempDir()
	argsFile := filepath.Join(tmpDir, "args.txt")
	stdinFile := filepath.Join(tmpDir, "stdin.json")
	writeHook(t, tmpDir, HookOnExport, `#!/bin/sh
echo "$1 $2" > `+argsFile+`
cat > `+stdinFile, 0755)

	runner := NewRunner(tmpDir, 0)
	err := runner.RunSync(context.Background(), EventExport, Payload{
		Input:  "stories.jsonl",
		Output: "entities.csv",
		Stats:  &extractor.Stats{RowsUnique: 7},
	})
	if err != nil {
		t.Fatalf("RunSync returned error: %v", err)
	}

	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("Failed to read args file: %v", err)
	}
	if string(args) != "entities.csv export\n" {
		t.Errorf("Hook args = %q, want %q", args, "entities.csv export\n")
	}

	data, err := os.ReadFile(stdinFile)
	if err != nil {
		t.Fatalf("Failed to read stdin file: %v", err)
	}
	var got Payload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Hook input is not JSON: %v: %s", err, data)
	}
	if got.Event != EventExport || got.Input != "stories.jsonl" || got.Stats == nil || got.Stats.RowsUnique != 7 {
		t.Errorf("unexpected payload: %+v", got)
	}
}

func TestRunSync_HookFailure(t *testing.T) {
	tmpDir := t.TempDir()
	writeHook(t, tmpDir, HookOnExportFailed, "#!/bin/sh\necho boom >&2\nexit 1", 0755)

	err := NewRunner(tmpDir, 0).RunSync(context.Background(), EventExportFailed, Payload{Error: "bad span"})
	if err == nil {
		t.Fatal("RunSync should have returned error for failed hook")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry hook stderr, got %v", err)
	}
}

func TestRunSync_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping timeout test in short mode")
	}

	tmpDir := t.TempDir()
	writeHook(t, tmpDir, HookOnExport, "#!/bin/sh\nsleep 60", 0755)

	runner := NewRunner(tmpDir, 500*time.Millisecond)
	start := time.Now()
	err := runner.RunSync(context.Background(), EventExport, Payload{})
	elapsed := time.Since(start)

	if err == nil {
		t.Error("RunSync should have returned error for timeout")
	}
	if elapsed > 5*time.Second {
		t.Errorf("RunSync took too long: %v", elapsed)
	}
}

func TestRunSync_KillsDescendants(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("TestRunSync_KillsDescendants requires Linux /proc")
	}
	if testing.Short() {
		t.Skip("Skipping long-running descendant kill test in short mode")
	}

	tmpDir := t.TempDir()
	pidFile := filepath.Join(tmpDir, "child.pid")

	// The hook waits on a background sleep, so only killing the process
	// group ends both.
	writeHook(t, tmpDir, HookOnExport, `#!/bin/sh
(sleep 60 & echo $! > `+pidFile+` ; wait)`, 0755)

	runner := NewRunner(tmpDir, 500*time.Millisecond)
	if err := runner.RunSync(context.Background(), EventExport, Payload{}); err == nil {
		t.Fatal("Expected RunSync to return an error on timeout")
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("Failed to read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("Invalid pid in pid file: %v", err)
	}

	for i := 0; i < 10; i++ {
		if _, err := os.Stat(filepath.Join("/proc", strconv.Itoa(pid))); err != nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("Child process %d still exists after timeout", pid)
}
