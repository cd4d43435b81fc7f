package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/delivery"
	"mashup/internal/deps"
	"mashup/internal/logging"
	"mashup/internal/preflight"
	"mashup/internal/runs"
	"mashup/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkSMTP bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, dependency, and run history health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *runs.Store) error {
				out := cmd.OutOrStdout()
				report := newStatusReport(out)

				report.section("Configuration")
				configDetail := ctx.configPath
				if !ctx.configExists {
					configDetail += " (not found, using defaults)"
				}
				report.add("Config file", stateInfo, configDetail)
				report.add("Isolated CLI runs", stateInfo, yesNo(cfg.Workspace.IsolateRuns))
				report.add("Isolated web runs", stateInfo, yesNo(cfg.Web.IsolateRuns))

				report.section("Directories")
				for _, check := range preflight.RunAll(cmd.Context(), cfg) {
					addCheck(report, check)
				}
				addDirectoryUsage(report, "Staging usage", cfg.Paths.StagingDir)
				addDirectoryUsage(report, "Output usage", cfg.Paths.OutputDir)

				report.section("Tools")
				addDependencies(report, preflight.CheckSystemDeps(cmd.Context(), cfg))

				report.section("Email delivery")
				addDelivery(cmd, report, cfg, checkSMTP)

				report.section("Run history")
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					report.add("Runs", stateFail, err.Error())
				} else {
					addHistory(report, stats)
				}

				fmt.Fprintln(out, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&checkSMTP, "check-smtp", false, "Test the TCP connection to the SMTP server")
	return cmd
}

func addCheck(report *statusReport, check preflight.Result) {
	state := stateOK
	if !check.Passed {
		state = stateFail
	}
	report.add(check.Name, state, check.Detail)
}

func addDirectoryUsage(report *statusReport, label, path string) {
	info, err := staging.Inspect(path)
	if err != nil {
		report.add(label, stateWarn, err.Error())
		return
	}
	report.add(label, stateInfo, fmt.Sprintf("%s in %d files, %d run directories", humanize.Bytes(uint64(info.Size)), info.Files, info.Runs))
}

func addDependencies(report *statusReport, statuses []deps.Status) {
	available := 0
	for _, dep := range statuses {
		if dep.Available {
			available++
		}
	}
	summary := stateOK
	if len(deps.Missing(statuses)) > 0 {
		summary = stateFail
	}
	report.add("Available", summary, fmt.Sprintf("%d of %d", available, len(statuses)))

	for _, dep := range statuses {
		switch {
		case dep.Available:
			detail := dep.Path
			if dep.Version != "" {
				detail = dep.Version
			}
			report.add(dep.Name, stateOK, detail)
		case dep.Optional:
			report.add(dep.Name, stateWarn, dep.Detail+"; singer searches are unavailable")
		default:
			report.add(dep.Name, stateFail, dep.Detail)
		}
	}
}

func addDelivery(cmd *cobra.Command, report *statusReport, cfg *config.Config, checkSMTP bool) {
	svc := delivery.NewService(cfg, logging.NewNop())
	report.add("SMTP server", stateInfo, fmt.Sprintf("%s:%d", cfg.Delivery.SMTPHost, cfg.Delivery.SMTPPort))
	if svc.Configured() {
		report.add("Credentials", stateOK, "configured")
	} else {
		report.add("Credentials", stateWarn, "EMAIL and EMAIL_PASSWORD not set; --email will fail")
	}
	if checkSMTP {
		addCheck(report, preflight.CheckSMTP(cmd.Context(), cfg.Delivery.SMTPHost, cfg.Delivery.SMTPPort))
	}
}

func addHistory(report *statusReport, stats map[runs.Status]int) {
	total := 0
	for _, count := range stats {
		total += count
	}
	report.add("Recorded", stateInfo, fmt.Sprintf("%d", total))
	for _, status := range []runs.Status{runs.StatusSucceeded, runs.StatusFailed, runs.StatusRunning} {
		state := stateInfo
		if status == runs.StatusFailed && stats[status] > 0 {
			state = stateWarn
		}
		report.add(string(status), state, fmt.Sprintf("%d", stats[status]))
	}
}
