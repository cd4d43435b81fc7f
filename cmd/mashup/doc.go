// Package main hosts the mashup CLI entrypoint and command graph.
//
// The root command takes the four positional arguments
// <SingerName> <NumberOfVideos> <AudioDuration> <OutputFileName>, validates
// them before touching the filesystem, and runs the pipeline in-process.
// Subcommands cover local files, run history, health, cleanup, and
// configuration scaffolding.
//
// Every outcome is a single line on stdout: the output path with exit code 0,
// or a short reason with exit code 1.
package main
