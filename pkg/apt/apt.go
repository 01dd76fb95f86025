// Package apt wraps the Debian package manager operations the bootstrap
// pipeline needs: index refresh, upgrade, transactional install/remove,
// dependency repair and installed-state queries.
package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// nonInteractiveEnv keeps dpkg from blocking on configuration prompts.
var nonInteractiveEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

// Manager performs apt operations through a runner.
type Manager struct {
	runner runner.Runner
}

// NewManager creates an apt manager.
func NewManager(r runner.Runner) *Manager {
	return &Manager{runner: r}
}

// Update refreshes the package index. The returned result carries the
// exit status; callers decide whether a failed refresh is fatal.
func (m *Manager) Update(ctx context.Context) (*runner.Result, error) {
	return m.aptGet(ctx, "update")
}

// Upgrade performs a full upgrade of installed packages.
func (m *Manager) Upgrade(ctx context.Context) error {
	result, err := m.aptGet(ctx, "upgrade", "-y")
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("apt-get upgrade failed (exit %d): %s", result.ExitCode, tail(result.Stderr))
	}
	return nil
}

// Install installs the named packages in one transaction.
func (m *Manager) Install(ctx context.Context, packages ...string) error {
	if len(packages) == 0 {
		return fmt.Errorf("no packages given")
	}
	args := append([]string{"install", "-y"}, packages...)
	result, err := m.aptGet(ctx, args...)
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("apt-get install %s failed (exit %d): %s",
			strings.Join(packages, " "), result.ExitCode, tail(result.Stderr))
	}
	return nil
}

// Remove removes a single package. Failures are reported but carry no
// classification; the legacy-cleanup stage treats them as advisory.
func (m *Manager) Remove(ctx context.Context, pkg string) error {
	result, err := m.aptGet(ctx, "remove", "-y", pkg)
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("apt-get remove %s failed (exit %d): %s", pkg, result.ExitCode, tail(result.Stderr))
	}
	return nil
}

// Autoremove prunes dependencies no longer needed by any package.
func (m *Manager) Autoremove(ctx context.Context) error {
	result, err := m.aptGet(ctx, "autoremove", "-y")
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("apt-get autoremove failed (exit %d): %s", result.ExitCode, tail(result.Stderr))
	}
	return nil
}

// FixBroken attempts to resolve broken dependencies after a failed
// install transaction.
func (m *Manager) FixBroken(ctx context.Context) error {
	result, err := m.aptGet(ctx, "install", "-y", "--fix-broken")
	if err != nil {
		return err
	}
	if !result.Ok() {
		return fmt.Errorf("apt-get --fix-broken failed (exit %d): %s", result.ExitCode, tail(result.Stderr))
	}
	return nil
}

// IsInstalled reports whether a package is currently installed, using
// dpkg-query so virtual or merely-known packages do not count.
func (m *Manager) IsInstalled(ctx context.Context, pkg string) (bool, error) {
	result, err := m.runner.Run(ctx, runner.Command{
		Name: "dpkg-query",
		Args: []string{"-W", "-f=${Status}", pkg},
	})
	if err != nil {
		return false, err
	}
	if !result.Ok() {
		// dpkg-query exits non-zero for unknown packages.
		return false, nil
	}
	return strings.Contains(result.Stdout, "install ok installed"), nil
}

func (m *Manager) aptGet(ctx context.Context, args ...string) (*runner.Result, error) {
	return m.runner.Run(ctx, runner.Command{
		Name: "apt-get",
		Args: args,
		Env:  nonInteractiveEnv,
		Sudo: true,
	})
}

// tail returns the last line of command output, which for apt is where
// the actionable error message lives.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
