package main

import (
	"github.com/spf13/cobra"

	"mashup/internal/request"
	"mashup/internal/workflow"
)

func newRootCommand(opts ...workflow.Option) *cobra.Command {
	var configFlag string
	var emailFlag string

	ctx := newCommandContext(&configFlag, opts...)

	rootCmd := &cobra.Command{
		Use:   "mashup <SingerName> <NumberOfVideos> <AudioDuration> <OutputFileName>",
		Short: "Build an MP3 mashup from a singer's songs",
		Long: `Search for <NumberOfVideos> songs by <SingerName>, keep the first
<AudioDuration> seconds of each, and join them into <OutputFileName>.

A <SingerName> that matches a subcommand (files, runs, status, clean,
config, help, completion) must follow "--". Flags go before the "--".`,
		Example: `  mashup "Sharry Maan" 20 30 mashup.mp3
  mashup "Sharry Maan" 20 30 mashup.mp3 --email me@example.com
  mashup files 25 mix.mp3 one.mp3 two.wav

  # A singer named like a subcommand goes after --
  mashup --email me@example.com -- status 20 30 mashup.mp3`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return request.ErrUsage
			}
			return ctx.runSearch(cmd, args, emailFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVar(&emailFlag, "email", "", "Email the zipped mashup to this address")

	rootCmd.AddCommand(newFilesCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
