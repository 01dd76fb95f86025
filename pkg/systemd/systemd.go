// Package systemd wraps the service manager operations used to activate
// the container engine: enable at boot, start, and active-state queries.
package systemd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// Manager controls systemd units through a runner.
type Manager struct {
	runner runner.Runner
}

// NewManager creates a systemd manager.
func NewManager(r runner.Runner) *Manager {
	return &Manager{runner: r}
}

// Enable marks the unit for automatic start at boot.
func (m *Manager) Enable(ctx context.Context, unit string) error {
	return m.systemctl(ctx, "enable", unit)
}

// Start starts the unit immediately.
func (m *Manager) Start(ctx context.Context, unit string) error {
	return m.systemctl(ctx, "start", unit)
}

// IsActive reports whether the unit is currently active.
func (m *Manager) IsActive(ctx context.Context, unit string) (bool, error) {
	result, err := m.runner.Run(ctx, runner.Command{
		Name: "systemctl",
		Args: []string{"is-active", unit},
	})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result.Stdout) == "active", nil
}

// WaitActive polls the unit's active state with exponential backoff until
// it is active or the timeout elapses. A zero timeout degenerates to a
// single instantaneous check.
func (m *Manager) WaitActive(ctx context.Context, unit string, timeout time.Duration) error {
	if timeout <= 0 {
		active, err := m.IsActive(ctx, unit)
		if err != nil {
			return err
		}
		if !active {
			return fmt.Errorf("unit %s is not active", unit)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 2 * time.Second
	policy.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		active, err := m.IsActive(ctx, unit)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !active {
			return fmt.Errorf("unit %s is not active yet", unit)
		}
		return nil
	}, backoff.WithContext(policy, ctx))
}

func (m *Manager) systemctl(ctx context.Context, verb, unit string) error {
	result, err := m.runner.Run(ctx, runner.Command{
		Name: "systemctl",
		Args: []string{verb, unit},
		Sudo: true,
	})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("systemctl %s %s failed (exit %d): %s",
			verb, unit, result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}
