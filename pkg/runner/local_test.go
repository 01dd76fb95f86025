package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLocalRunCapturesOutput(t *testing.T) {
	l := NewLocal()

	result, err := l.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !result.Ok() {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "out" {
		t.Errorf("Stdout = %q, want out", result.Stdout)
	}
	if strings.TrimSpace(result.Stderr) != "err" {
		t.Errorf("Stderr = %q, want err", result.Stderr)
	}
}

func TestLocalRunNonZeroExitIsNotAnError(t *testing.T) {
	l := NewLocal()

	result, err := l.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func TestLocalRunMissingCommand(t *testing.T) {
	l := NewLocal()

	if _, err := l.Run(context.Background(), Command{Name: "definitely-not-a-real-command"}); err == nil {
		t.Fatal("Run() = nil error for an unlaunchable command")
	}
	if _, err := l.Run(context.Background(), Command{}); err == nil {
		t.Fatal("Run() = nil error for an empty command name")
	}
}

func TestLocalRunStdin(t *testing.T) {
	l := NewLocal()

	result, err := l.Run(context.Background(), Command{Name: "cat", Stdin: "piped\n"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Stdout != "piped\n" {
		t.Errorf("Stdout = %q, want piped input echoed back", result.Stdout)
	}
}

func TestLocalRunEnv(t *testing.T) {
	l := NewLocal()

	result, err := l.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "printf %s \"$PROBE_VALUE\""},
		Env:  []string{"PROBE_VALUE=set"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Stdout != "set" {
		t.Errorf("Stdout = %q, want injected env value", result.Stdout)
	}
}

func TestLocalRunTimeout(t *testing.T) {
	l := NewLocal()

	// The kill shows up as an ExitError with code -1; it must not be
	// mistaken for a normal non-zero exit.
	_, err := l.Run(context.Background(), Command{
		Name:    "sleep",
		Args:    []string{"5"},
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("Run() = nil error for a timed-out command")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want wrapped context.DeadlineExceeded", err)
	}
}

func TestLocalRunCancelledContext(t *testing.T) {
	l := NewLocal()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := l.Run(ctx, Command{Name: "sleep", Args: []string{"5"}})
	if err == nil {
		t.Fatal("Run() = nil error for a cancelled command")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want wrapped context.Canceled", err)
	}
}

func TestResultHelpers(t *testing.T) {
	ok := &Result{ExitCode: 0, Stdout: "Hello from Docker!\n"}
	if !ok.Ok() {
		t.Error("Ok() = false for exit 0")
	}
	if !ok.OutputContains("Hello from Docker!") {
		t.Error("OutputContains missed a stdout substring")
	}

	failed := &Result{ExitCode: 1, Stderr: "permission denied"}
	if failed.Ok() {
		t.Error("Ok() = true for exit 1")
	}
	if !failed.OutputContains("permission denied") {
		t.Error("OutputContains missed a stderr substring")
	}

	var nilResult *Result
	if nilResult.Ok() || nilResult.OutputContains("x") {
		t.Error("nil result helpers must report false")
	}
}

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "apt-get", Args: []string{"install", "-y", "curl"}, Sudo: true}
	if got := cmd.String(); got != "sudo apt-get install -y curl" {
		t.Errorf("String() = %q", got)
	}

	plain := Command{Name: "hostname"}
	if got := plain.String(); got != "hostname" {
		t.Errorf("String() = %q", got)
	}
}
