package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// Local executes commands on the local host via os/exec.
type Local struct {
	// SudoCommand is the escalation program, "sudo" unless overridden.
	SudoCommand string
}

// NewLocal creates a local runner.
func NewLocal() *Local {
	return &Local{SudoCommand: "sudo"}
}

// Run executes the command locally, capturing stdout and stderr.
func (l *Local) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("command name is required")
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	name := cmd.Name
	args := cmd.Args
	if cmd.Sudo && os.Geteuid() != 0 {
		sudo := l.SudoCommand
		if sudo == "" {
			sudo = "sudo"
		}
		args = append([]string{cmd.Name}, cmd.Args...)
		name = sudo
	}

	execCmd := exec.CommandContext(ctx, name, args...)
	if cmd.Stdin != "" {
		execCmd.Stdin = bytes.NewBufferString(cmd.Stdin)
	}
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	log.Debug().Str("command", cmd.String()).Msg("executing command")

	start := time.Now()
	err := execCmd.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if err != nil {
		// A timeout or cancellation kill also surfaces as an ExitError
		// (exit code -1), so the context takes precedence.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("command %q: %w", cmd.Name, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// Command never ran (not found, ...).
			return nil, fmt.Errorf("command %q: %w", cmd.Name, err)
		}
	}

	log.Debug().
		Str("command", cmd.String()).
		Int("exit_code", result.ExitCode).
		Dur("duration", duration).
		Msg("command completed")

	return result, nil
}

// WriteFile writes content to a local path. When the path is not writable
// by the current user the write is routed through sudo tee so privileged
// locations such as /etc/apt work for a non-root invoker.
func (l *Local) WriteFile(ctx context.Context, path string, content []byte, mode uint32) error {
	if os.Geteuid() == 0 {
		return os.WriteFile(path, content, os.FileMode(mode))
	}

	result, err := l.Run(ctx, Command{
		Name:  "tee",
		Args:  []string{path},
		Stdin: string(content),
		Sudo:  true,
	})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("write %s: tee exited %d: %s", path, result.ExitCode, result.Stderr)
	}

	chmod, err := l.Run(ctx, Command{
		Name: "chmod",
		Args: []string{fmt.Sprintf("%o", mode), path},
		Sudo: true,
	})
	if err != nil {
		return err
	}
	if !chmod.Ok() {
		return fmt.Errorf("chmod %s: exited %d: %s", path, chmod.ExitCode, chmod.Stderr)
	}
	return nil
}
