package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dockstrap/dockstrap/pkg/facts"
)

func newFactsCommand() *cobra.Command {
	var (
		target   string
		identity string
	)

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print host identity facts as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			r, _, cleanup, err := targetRunner(ctx, cfg, target, identity)
			if err != nil {
				return err
			}
			defer cleanup()

			host, err := facts.Collect(ctx, r)
			if err != nil {
				return fmt.Errorf("collect facts: %w", err)
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(host)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "collect facts from a remote host (user@host)")
	cmd.Flags().StringVar(&identity, "identity", "", "SSH private key for --target")

	return cmd
}
