package bootstrap

import (
	"context"
	"fmt"
	"strings"
)

// updateSystem refreshes the package index and performs a full upgrade.
// Only the upgrade gates the fatal path; a failed index refresh is
// logged and tolerated since the repository stage refreshes again.
func updateSystem(ctx context.Context, env *Env) Result {
	refresh, err := env.Apt.Update(ctx)
	if err != nil {
		return Fatal(fmt.Errorf("refresh package index: %w", err))
	}
	if !refresh.Ok() {
		env.Logger.Warn().Int("exit_code", refresh.ExitCode).Msg("package index refresh failed; continuing")
	}

	if err := env.Apt.Upgrade(ctx); err != nil {
		return Fatal(err)
	}
	return Success("system packages upgraded")
}

// installPrerequisites installs the utility packages the repository
// setup depends on, in one transaction.
func installPrerequisites(ctx context.Context, env *Env) Result {
	packages := env.Cfg.Pkgs.Prerequisites
	if err := env.Apt.Install(ctx, packages...); err != nil {
		return Fatal(err)
	}
	return Success(fmt.Sprintf("prerequisites installed: %s", strings.Join(packages, ", ")))
}
