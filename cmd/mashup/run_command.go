package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mashup/internal/request"
	"mashup/internal/services"
	"mashup/internal/workflow"
)

const filesUsage = "Usage: mashup files <AudioDuration> <OutputFileName> <file>..."

func (c *commandContext) runSearch(cmd *cobra.Command, args []string, email string) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	req, err := request.ParseArgs(args, request.CLIBounds(cfg))
	if err != nil {
		return err
	}
	if req, err = request.WithRecipient(req, email); err != nil {
		return err
	}
	return c.execute(cmd, req)
}

func newFilesCommand(ctx *commandContext) *cobra.Command {
	var emailFlag string

	cmd := &cobra.Command{
		Use:   "files <AudioDuration> <OutputFileName> <file>...",
		Short: "Build a mashup from local audio files",
		Long: `Copy the given audio files into the staging directory, keep the first
<AudioDuration> seconds of each, and join them into <OutputFileName>.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return services.Fail(services.ErrValidation, filesUsage, nil)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := request.ParseFiles(args[0], args[1], args[2:], request.CLIBounds(cfg))
			if err != nil {
				return err
			}
			if req, err = request.WithRecipient(req, emailFlag); err != nil {
				return err
			}
			return ctx.execute(cmd, req)
		},
	}
	cmd.Flags().StringVar(&emailFlag, "email", "", "Email the zipped mashup to this address")
	return cmd
}

func (c *commandContext) execute(cmd *cobra.Command, req request.Request) error {
	return c.withPipeline(func(p *workflow.Pipeline) error {
		report, err := p.Run(cmd.Context(), workflow.OriginCLI, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Mashup created successfully: %s\n", report.OutputPath)
		if report.Delivered {
			fmt.Fprintf(out, "Sent to %s\n", req.Recipient)
		}
		return nil
	})
}
