package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"mashup/internal/services"
	"mashup/internal/workflow"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command tree and returns the process exit code. Every
// failure is reported as a single line on stdout.
func run(args []string, stdout, stderr io.Writer, opts ...workflow.Option) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand(opts...)
	cmd.SetArgs(separatePositionals(cmd, args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stdout, services.UserMessage(err))
		return 1
	}
	return 0
}
