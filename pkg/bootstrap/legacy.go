package bootstrap

import (
	"context"
	"fmt"
	"strings"
)

// cleanLegacyPackages detects known-conflicting packages and removes
// them with operator consent. Individual removal failures are advisory:
// a leftover legacy package degrades the install but does not block it.
func cleanLegacyPackages(ctx context.Context, env *Env) Result {
	var found []string
	for _, pkg := range env.Cfg.Pkgs.Legacy {
		installed, err := env.Apt.IsInstalled(ctx, pkg)
		if err != nil {
			return Fatal(fmt.Errorf("query package %s: %w", pkg, err))
		}
		if installed {
			found = append(found, pkg)
		}
	}

	if len(found) == 0 {
		return Success("no conflicting packages installed")
	}

	env.Logger.Info().Strs("packages", found).Msg("conflicting packages detected")
	question := fmt.Sprintf("Remove conflicting packages (%s)?", strings.Join(found, ", "))
	remove, err := env.Prompter.Confirm(question, true)
	if err != nil {
		return Fatal(fmt.Errorf("read confirmation: %w", err))
	}
	if !remove {
		return Skipf("keeping %d conflicting package(s) at operator request", len(found))
	}

	var failures []string
	for _, pkg := range found {
		if err := env.Apt.Remove(ctx, pkg); err != nil {
			env.Logger.Warn().Str("package", pkg).Err(err).Msg("failed to remove package")
			failures = append(failures, pkg)
		}
	}
	if err := env.Apt.Autoremove(ctx); err != nil {
		env.Logger.Warn().Err(err).Msg("autoremove failed")
	}

	if len(failures) > 0 {
		return Warnf("removed %d of %d conflicting packages; could not remove: %s",
			len(found)-len(failures), len(found), strings.Join(failures, ", "))
	}
	return Success(fmt.Sprintf("removed %d conflicting package(s)", len(found)))
}
