package bootstrap

import (
	"context"
	"fmt"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// checkConnectivity sends a single bounded reachability probe to the
// package vendor's host. No retry and no alternate mirror: an
// unreachable vendor makes every later stage pointless.
func checkConnectivity(ctx context.Context, env *Env) Result {
	host := env.Cfg.Repo.PingHost

	result, err := env.Runner.Run(ctx, runner.Command{
		Name: "ping",
		Args: []string{"-c", "1", "-W", "1", host},
	})
	if err != nil {
		return Fatal(fmt.Errorf("reachability probe to %s: %w", host, err))
	}
	if !result.Ok() {
		return Fatalf("%s is unreachable (ping exited %d); check network connectivity", host, result.ExitCode)
	}

	return Success(fmt.Sprintf("%s is reachable", host))
}
