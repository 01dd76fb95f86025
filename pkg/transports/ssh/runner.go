package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// Runner executes commands on the remote target through the SSH client.
// It implements runner.Runner so the bootstrap pipeline is unaware of
// whether it is provisioning the local host or a remote one.
type Runner struct {
	client *Client
	config *Config
}

// NewRunner creates a remote runner bound to the given client.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client, config: client.config}
}

// Run executes a command on the remote host, capturing its output.
func (r *Runner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("command name is required")
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = r.config.CommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := r.client.session()
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	line := buildCommandLine(cmd, r.config.Password)
	if cmd.Stdin != "" {
		session.Stdin = bytes.NewBufferString(cmd.Stdin)
	}

	log.Debug().Str("command", cmd.String()).Str("host", r.config.Host).Msg("executing remote command")

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- session.Run(line)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		time.Sleep(100 * time.Millisecond)
		_ = session.Signal(ssh.SIGKILL)
		return nil, &TransportError{Op: "execute", Err: ctx.Err(), IsTemporary: true}
	case runErr = <-done:
	}

	result := &runner.Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr != nil {
		var exitErr *ssh.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			return nil, &TransportError{Op: "execute", Err: runErr, IsTemporary: true}
		}
	}

	return result, nil
}

// buildCommandLine renders the command for the remote shell, routing it
// through sudo when requested. A configured password is fed to sudo -S
// on stdin-less sessions via echo, matching hosts without NOPASSWD.
func buildCommandLine(cmd runner.Command, sudoPassword string) string {
	parts := make([]string, 0, len(cmd.Args)+1)
	parts = append(parts, shellQuote(cmd.Name))
	for _, arg := range cmd.Args {
		parts = append(parts, shellQuote(arg))
	}
	line := strings.Join(parts, " ")

	if len(cmd.Env) > 0 {
		// env assignments go through `env` so they survive the sudo
		// boundary below.
		envParts := make([]string, 0, len(cmd.Env)+1)
		envParts = append(envParts, "env")
		for _, kv := range cmd.Env {
			envParts = append(envParts, shellQuote(kv))
		}
		line = strings.Join(envParts, " ") + " " + line
	}

	if cmd.Sudo {
		if sudoPassword != "" {
			line = fmt.Sprintf("echo %s | sudo -S %s", shellQuote(sudoPassword), line)
		} else {
			line = "sudo " + line
		}
	}
	return line
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'`$\\&|;<>(){}[]*?~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
