//go:build unix

package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

// runHook executes the hook and enforces a timeout, killing the process group
// on expiration so descendant processes are terminated too.
func (r *Runner) runHook(ctx context.Context, hookPath, event string, p Payload) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// #nosec G204 -- hookPath is from the controlled hooks directory
	cmd := exec.Command(hookPath, p.Output, event)
	cmd.Stdin = bytes.NewReader(payload)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Scripts may spawn children; a process group lets a timeout kill them all
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

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
			if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
				return fmt.Errorf("kill process group: %w", err)
			}
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
