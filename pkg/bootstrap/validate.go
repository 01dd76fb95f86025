package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/facts"
	"github.com/dockstrap/dockstrap/pkg/runner"
)

// supportedDistributions are the os-release IDs the installer accepts.
var supportedDistributions = map[string]bool{
	"ubuntu": true,
	"debian": true,
}

// validateEnvironment confirms host identity and operator privileges.
// It is the only stage that mutates Env: collected facts are kept for
// the repository stage.
func validateEnvironment(ctx context.Context, env *Env) Result {
	host, err := facts.Collect(ctx, env.Runner)
	if err != nil {
		return Fatal(fmt.Errorf("cannot determine host identity: %w", err))
	}
	env.Facts = host

	if !supportedDistributions[host.ID] {
		return Fatalf("unsupported distribution %q (%s); supported: ubuntu, debian", host.ID, host.PrettyName)
	}
	env.Logger.Info().
		Str("distribution", host.PrettyName).
		Str("codename", host.Codename).
		Str("arch", host.Arch).
		Msg("host identity verified")

	uid, err := env.Runner.Run(ctx, runner.Command{Name: "id", Args: []string{"-u"}})
	if err != nil {
		return Fatal(fmt.Errorf("determine user id: %w", err))
	}

	if strings.TrimSpace(uid.Stdout) == "0" {
		proceed, err := env.Prompter.Confirm("Running as the superuser. Continue anyway?", false)
		if err != nil {
			return Fatal(fmt.Errorf("read confirmation: %w", err))
		}
		if !proceed {
			return CleanExit("aborted at operator request; re-run as a regular user with sudo access")
		}
		return Success("environment validated (running as superuser)")
	}

	probe, err := env.Runner.Run(ctx, runner.Command{Name: "sudo", Args: []string{"-n", "true"}})
	if err != nil {
		return Fatal(fmt.Errorf("probe privilege escalation: %w", err))
	}
	if !probe.Ok() {
		return Fatalf("privilege escalation unavailable: sudo -n exited %d (configure sudo access and retry)", probe.ExitCode)
	}

	return Success("environment validated")
}
