// Package runner provides result-typed execution of external commands.
//
// Every external tool invocation (apt-get, systemctl, docker, ...) goes
// through the Runner interface so callers decide whether a non-zero exit
// is fatal or advisory, and so the whole pipeline can be pointed at a
// remote host or a test double without changing the stages.
package runner

import (
	"context"
	"strings"
	"time"
)

// Command describes a single external command invocation.
type Command struct {
	// Name is the program to execute.
	Name string

	// Args are the program arguments.
	Args []string

	// Stdin, when non-empty, is written to the program's standard input.
	Stdin string

	// Env holds additional environment variables as KEY=VALUE pairs.
	Env []string

	// Sudo runs the command through the privilege escalation mechanism.
	Sudo bool

	// Timeout bounds the command's execution. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
}

// Result is the outcome of a command invocation. A non-zero ExitCode is
// not an error at this layer; only failures to launch or a cancelled
// context surface as errors from Runner.Run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Ok reports whether the command exited zero.
func (r *Result) Ok() bool {
	return r != nil && r.ExitCode == 0
}

// OutputContains reports whether the given substring occurs in stdout or
// stderr.
func (r *Result) OutputContains(substr string) bool {
	if r == nil {
		return false
	}
	return strings.Contains(r.Stdout, substr) || strings.Contains(r.Stderr, substr)
}

// Runner executes commands on a host, locally or remotely.
type Runner interface {
	// Run executes the command and returns its captured result. An error
	// is returned only when the command could not be executed at all.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// WriteFile places content at path on the target host with the given
	// mode. Paths under privileged directories require Runner
	// implementations to escalate.
	WriteFile(ctx context.Context, path string, content []byte, mode uint32) error
}

// String renders the command for logging.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+2)
	if c.Sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}
