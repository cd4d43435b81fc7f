package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/runs"
	"mashup/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var historyDays int
	var abandoned bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale per-run directories and old run history",
		Long: `Remove per-run staging and output directories older than --older-than.
Loose files in the shared directories are left alone; the next run clears them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				out := cmd.OutOrStdout()
				logger := logging.NewNop()

				failed := 0
				for _, root := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir} {
					result := staging.CleanStale(root, olderThan, logger)
					for _, path := range result.Removed {
						fmt.Fprintf(out, "Removed %s\n", path)
					}
					for _, cleanupErr := range result.Errors {
						fmt.Fprintf(out, "Failed to remove %s: %v\n", cleanupErr.Path, cleanupErr.Error)
						failed++
					}
				}

				if abandoned {
					n, err := store.MarkAbandoned(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Marked %d unfinished runs as failed\n", n)
				}
				if historyDays > 0 {
					cutoff := time.Now().AddDate(0, 0, -historyDays)
					n, err := store.Prune(cmd.Context(), cutoff)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Pruned %d runs older than %d days\n", n, historyDays)
				}

				if failed > 0 {
					return fmt.Errorf("%d directories could not be removed", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Minimum age of run directories to remove")
	cmd.Flags().IntVar(&historyDays, "history-days", 0, "Also delete finished runs older than this many days (0 keeps all)")
	cmd.Flags().BoolVar(&abandoned, "abandoned", false, "Mark runs left in the running state as failed; only use when no run is in progress")
	return cmd
}
