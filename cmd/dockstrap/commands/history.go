package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var (
		runID string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded bootstrap runs from the journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			journal, err := openJournal(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer journal.Close()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			defer w.Flush()

			if runID != "" {
				records, err := journal.StagesForRun(ctx, runID)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return fmt.Errorf("no stages recorded for run %s", runID)
				}
				fmt.Fprintln(w, "#\tSTAGE\tSTATUS\tDURATION\tMESSAGE")
				for _, rec := range records {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						rec.Position+1, rec.Stage, rec.Status, rec.Duration.Round(time.Millisecond), rec.Message)
				}
				return nil
			}

			runs, err := journal.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN\tTARGET\tSTATUS\tSTARTED\tCOMPLETED")
			for _, run := range runs {
				completed := "-"
				if run.CompletedAt != nil {
					completed = run.CompletedAt.Local().Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					run.ID, run.Target, run.Status,
					run.StartedAt.Local().Format(time.RFC3339), completed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "show per-stage results for one run")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}
