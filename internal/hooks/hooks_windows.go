//go:build windows

package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// runHook executes the hook and enforces a timeout on Windows.
// Windows lacks Unix-style process groups; on timeout only the started
// process is killed.
func (r *Runner) runHook(ctx context.Context, hookPath, event string, p Payload) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}

	cmd := exec.Command(hookPath, p.Output, event)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return fmt.Errorf("hook %s: %w", hookPath, ctx.Err())
	case err := <-done:
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook %s: %w: %s", hookPath, err, msg)
			}
			return fmt.Errorf("hook %s: %w", hookPath, err)
		}
		return nil
	}
}
