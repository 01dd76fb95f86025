package bootstrap

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// configurePermissions grants the invoking user access to the engine's
// control socket by way of the access-control group. The stage is
// idempotent: a user already in the group is left untouched. Applying
// the new membership to the live session is best-effort only.
func configurePermissions(ctx context.Context, env *Env) Result {
	group := env.Cfg.Access.Group

	user, err := invokingUser(ctx, env)
	if err != nil {
		return Fatal(fmt.Errorf("determine invoking user: %w", err))
	}
	if user == "root" {
		reportSocketOwnership(ctx, env)
		return Skipf("superuser needs no group membership")
	}

	groups, err := env.Runner.Run(ctx, runner.Command{Name: "id", Args: []string{"-nG", user}})
	if err != nil {
		return Fatal(fmt.Errorf("query group membership: %w", err))
	}
	if groups.Ok() && slices.Contains(strings.Fields(groups.Stdout), group) {
		reportSocketOwnership(ctx, env)
		return Success(fmt.Sprintf("user %s is already in group %s; re-login only if the socket is still denied", user, group))
	}

	add, err := env.Runner.Run(ctx, runner.Command{
		Name: "usermod",
		Args: []string{"-aG", group, user},
		Sudo: true,
	})
	if err != nil {
		return Fatal(fmt.Errorf("add user to group: %w", err))
	}
	if !add.Ok() {
		return Fatalf("add %s to group %s: exit %d: %s", user, group, add.ExitCode, add.Stderr)
	}
	env.Logger.Info().Str("user", user).Str("group", group).Msg("user added to access-control group")

	// Applying the membership to the current session needs a nested
	// shell; from inside this process the best we can do is confirm the
	// group resolves and tell the operator how to pick it up.
	probe, probeErr := env.Runner.Run(ctx, runner.Command{
		Name: "sg",
		Args: []string{group, "-c", "true"},
	})
	reportSocketOwnership(ctx, env)

	if probeErr != nil || !probe.Ok() {
		env.Logger.Warn().Str("group", group).
			Msgf("could not apply group membership to this session; run 'newgrp %s' or start a new login session", group)
		return Warnf("user %s added to group %s; membership takes effect after 'newgrp %s' or re-login", user, group, group)
	}

	return Success(fmt.Sprintf("user %s added to group %s", user, group))
}

// invokingUser resolves the non-escalated identity: SUDO_USER when the
// process was escalated locally, the runner's own identity otherwise.
func invokingUser(ctx context.Context, env *Env) (string, error) {
	if env.Target == "local" {
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			return sudoUser, nil
		}
	}

	who, err := env.Runner.Run(ctx, runner.Command{Name: "id", Args: []string{"-un"}})
	if err != nil {
		return "", err
	}
	if !who.Ok() {
		return "", fmt.Errorf("id -un exited %d", who.ExitCode)
	}
	return strings.TrimSpace(who.Stdout), nil
}

// reportSocketOwnership logs the control socket's ownership. Purely
// diagnostic; never gates the stage outcome.
func reportSocketOwnership(ctx context.Context, env *Env) {
	socket := env.Cfg.Access.SocketPath
	stat, err := env.Runner.Run(ctx, runner.Command{
		Name: "stat",
		Args: []string{"-c", "%U:%G %a", socket},
	})
	if err != nil || !stat.Ok() {
		env.Logger.Debug().Str("socket", socket).Msg("control socket not inspectable")
		return
	}
	env.Logger.Info().
		Str("socket", socket).
		Str("ownership", strings.TrimSpace(stat.Stdout)).
		Msg("control socket ownership")
}
