package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockstrap/dockstrap/pkg/runner"
)

// verifyInstallation confirms the client responds to a version query and
// optionally runs a disposable smoke-test workload whose output must
// contain a known substring.
func verifyInstallation(ctx context.Context, env *Env) Result {
	version, err := env.Runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"--version"},
	})
	if err != nil {
		return Fatal(fmt.Errorf("client version query: %w", err))
	}
	if !version.Ok() {
		return Fatalf("client does not respond to version query (exit %d): %s", version.ExitCode, version.Stderr)
	}
	env.Logger.Info().Str("version", strings.TrimSpace(version.Stdout)).Msg("client responds")

	runSmoke, err := env.Prompter.ConfirmLoop("Run a smoke-test container to verify the installation?")
	if err != nil {
		return Fatal(fmt.Errorf("read confirmation: %w", err))
	}
	if !runSmoke {
		return Skipf("smoke test declined")
	}

	image := env.Cfg.Verify.SmokeImage
	smoke, err := env.Runner.Run(ctx, runner.Command{
		Name: "docker",
		Args: []string{"run", "--rm", image},
		Sudo: true,
	})
	if err != nil {
		return Fatal(fmt.Errorf("run smoke test %s: %w", image, err))
	}
	if !smoke.Ok() {
		return Fatalf("smoke test %s failed (exit %d): %s", image, smoke.ExitCode, smoke.Stderr)
	}
	if !smoke.OutputContains(env.Cfg.Verify.ExpectOutput) {
		return Fatalf("smoke test %s output did not contain %q", image, env.Cfg.Verify.ExpectOutput)
	}

	return Success("installation verified with smoke test")
}
