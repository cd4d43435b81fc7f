package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/runs"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent mashup runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *runs.Store) error {
				list, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if format := chooseFormat(asJSON, asYAML); format != formatTable {
					views := make([]runs.View, 0, len(list))
					for _, run := range list {
						views = append(views, runs.NewView(run))
					}
					return writeStructured(cmd.OutOrStdout(), format, views)
				}
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(list, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func renderRunsTable(list []runs.Run, now time.Time) string {
	columns := []column{
		{title: "ID"},
		{title: "Started"},
		{title: "Origin"},
		{title: "Source"},
		{title: "Clips", numeric: true},
		{title: "Length", numeric: true},
		{title: "Status"},
	}
	rows := make([][]string, 0, len(list))
	for _, run := range list {
		rows = append(rows, []string{
			shortID(run.ID),
			humanize.RelTime(run.CreatedAt, now, "ago", "from now"),
			run.Origin,
			runSource(run),
			clipSummary(run),
			formatLength(run.Duration),
			runStatus(run),
		})
	}
	return renderTable(columns, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runSource(run runs.Run) string {
	if run.Mode == "upload" {
		return "uploads"
	}
	if run.Count > 0 {
		return fmt.Sprintf("%s ×%d", run.Performer, run.Count)
	}
	return run.Performer
}

func clipSummary(run runs.Run) string {
	if run.Skipped == 0 {
		return strconv.Itoa(run.Clips)
	}
	return fmt.Sprintf("%d (%d skipped)", run.Clips, run.Skipped)
}

func formatLength(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func runStatus(run runs.Run) string {
	status := string(run.Status)
	if run.Status == runs.StatusFailed && strings.TrimSpace(run.ErrorKind) != "" {
		status += " (" + run.ErrorKind + ")"
	}
	return status
}
