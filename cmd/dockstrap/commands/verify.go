package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/pkg/bootstrap"
	"github.com/dockstrap/dockstrap/pkg/dockerapi"
	"github.com/dockstrap/dockstrap/pkg/prompt"
)

func newVerifyCommand(version string) *cobra.Command {
	var (
		assumeYes bool
		deep      bool
		target    string
		identity  string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an existing Docker Engine installation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, tracer, err := buildTelemetry(cfg, version)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tracer.Shutdown(shutdownCtx)
			}()

			ctx := cmd.Context()
			r, targetName, cleanup, err := targetRunner(ctx, cfg, target, identity)
			if err != nil {
				return err
			}
			defer cleanup()

			var prompter prompt.Prompter = prompt.NewIO(os.Stdin, os.Stdout)
			if assumeYes {
				prompter = prompt.Assume(true)
			}

			env := bootstrap.NewEnv(cfg, r, prompter, logger, tracer)
			env.Target = targetName

			pipeline := bootstrap.NewWithStages(env, bootstrap.VerifyStages())
			err = pipeline.Execute(ctx)
			if err != nil && !errors.Is(err, bootstrap.ErrDeclined) {
				return err
			}

			if deep && target == "" {
				probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				probe, err := dockerapi.DeepVerify(probeCtx, "")
				if err != nil {
					return fmt.Errorf("deep verification: %w", err)
				}
				logger.Info().
					Str("host", probe.Host).
					Str("server_version", probe.ServerVersion).
					Str("api_version", probe.APIVersion).
					Str("os", probe.OS).
					Str("arch", probe.Arch).
					Msg("engine API responds")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer every prompt affirmatively")
	cmd.Flags().BoolVar(&deep, "deep", false, "also probe the engine API over the control socket (local target only)")
	cmd.Flags().StringVar(&target, "target", "", "verify a remote host instead (user@host)")
	cmd.Flags().StringVar(&identity, "identity", "", "SSH private key for --target")

	return cmd
}
