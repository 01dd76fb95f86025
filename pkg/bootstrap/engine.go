package bootstrap

import (
	"context"
	"fmt"
	"strings"
)

// installEngine installs the engine and plugin packages in one
// transaction, with a single repair-and-retry path: on failure, resolve
// broken dependencies and try the same transaction once more.
func installEngine(ctx context.Context, env *Env) Result {
	packages := env.Cfg.Pkgs.Engine

	err := env.Apt.Install(ctx, packages...)
	if err == nil {
		return Success(fmt.Sprintf("engine installed: %s", strings.Join(packages, ", ")))
	}

	env.Logger.Warn().Err(err).Msg("engine install failed; repairing dependencies and retrying once")
	if fixErr := env.Apt.FixBroken(ctx); fixErr != nil {
		return Fatal(fmt.Errorf("engine install failed and dependency repair failed: %w", fixErr))
	}
	if retryErr := env.Apt.Install(ctx, packages...); retryErr != nil {
		return Fatal(fmt.Errorf("engine install failed after dependency repair: %w", retryErr))
	}

	return Success(fmt.Sprintf("engine installed after retry: %s", strings.Join(packages, ", ")))
}
