package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/pkg/bootstrap"
	"github.com/dockstrap/dockstrap/pkg/config"
	"github.com/dockstrap/dockstrap/pkg/prompt"
	"github.com/dockstrap/dockstrap/pkg/stores"
)

func newInstallCommand(version string) *cobra.Command {
	var (
		assumeYes bool
		target    string
		identity  string
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Run the full Docker Engine bootstrap pipeline",
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

			if cfg.Journal.Enabled {
				if journal, jerr := openJournal(ctx, cfg); jerr != nil {
					logger.Warn().Err(jerr).Msg("journal unavailable; continuing without run recording")
				} else {
					env.Journal = journal
					defer journal.Close()
				}
			}

			err = bootstrap.New(env).Execute(ctx)
			if errors.Is(err, bootstrap.ErrDeclined) {
				return nil
			}
			if err != nil {
				return err
			}

			printSummary(cfg.Service.Name, cfg.Access.Group)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer every prompt affirmatively")
	cmd.Flags().StringVar(&target, "target", "", "bootstrap a remote host instead (user@host)")
	cmd.Flags().StringVar(&identity, "identity", "", "SSH private key for --target")

	return cmd
}

func openJournal(ctx context.Context, cfg *config.Config) (stores.Journal, error) {
	path, err := cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	journal, err := stores.NewSQLiteJournal(path)
	if err != nil {
		return nil, err
	}
	if err := journal.Init(ctx); err != nil {
		return nil, err
	}
	return journal, nil
}

func printSummary(service, group string) {
	fmt.Println()
	fmt.Println("Docker Engine is installed and running. Try:")
	fmt.Println("  docker run --rm hello-world")
	fmt.Println("  docker ps")
	fmt.Println("  docker compose version")
	fmt.Println()
	fmt.Printf("If the control socket is denied, apply the %s group with 'newgrp %s' or re-login.\n", group, group)
	fmt.Printf("Service status: systemctl status %s\n", service)
}
