package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mashup/internal/audio"
	"mashup/internal/logging"
	"mashup/internal/services"
)

// outputTemplate keeps the source title as the file stem and the native
// container as the extension.
const outputTemplate = "%(title)s.%(ext)s"

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithFormat overrides the yt-dlp format selector.
func WithFormat(format string) Option {
	return func(c *Client) {
		if format = strings.TrimSpace(format); format != "" {
			c.format = format
		}
	}
}

// WithExtraArgs appends raw arguments before the search target.
func WithExtraArgs(args ...string) Option {
	return func(c *Client) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps yt-dlp search-and-download invocations.
type Client struct {
	binary    string
	format    string
	timeout   time.Duration
	extraArgs []string
	exec      Executor
	logger    *slog.Logger
}

// Result summarises one acquisition.
type Result struct {
	Files    []string
	Warnings []string
}

// New constructs a yt-dlp client. timeout bounds the whole acquisition; zero
// disables it.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:  binary,
		format:  "bestaudio/best",
		timeout: timeout,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Acquire searches for phrase, downloads up to count results into destDir
// and returns the recognized media files found there afterwards.
//
// Individual download failures are tolerated. The call only fails when
// yt-dlp exits unsuccessfully and nothing usable was staged; a clean exit
// with zero files is left for the assembler to report.
func (c *Client) Acquire(ctx context.Context, phrase string, count int, destDir string) (Result, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return Result{}, errors.New("search phrase required")
	}
	if count <= 0 {
		return Result{}, fmt.Errorf("invalid result count %d", count)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var result Result
	start := time.Now()
	runErr := c.exec.Run(runCtx, c.binary, c.buildArgs(phrase, count, destDir), func(line string) {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "ERROR:"), strings.HasPrefix(line, "WARNING:"):
			result.Warnings = append(result.Warnings, line)
		default:
			c.logger.Debug("yt-dlp output", logging.String("line", line))
		}
	})
	if err := ctx.Err(); err != nil {
		return result, err
	}

	files, listErr := listMedia(destDir)
	if listErr != nil {
		return result, fmt.Errorf("list destination: %w", listErr)
	}
	result.Files = files

	if runErr != nil {
		if len(files) == 0 {
			return result, services.Fail(services.ErrAcquisition,
				"Could not download videos right now. Please try again later.",
				services.Wrap(services.ErrExternalTool, "acquire", "yt-dlp", lastLine(result.Warnings), runErr))
		}
		logging.WarnWithContext(c.logger, "yt-dlp finished with errors", "acquisition_partial",
			logging.Error(runErr),
			logging.Int("downloaded", len(files)),
			logging.Int("requested", count),
			logging.String(logging.FieldErrorHint, "some results were unavailable or blocked"),
			logging.String(logging.FieldImpact, "mashup built from fewer clips"),
		)
	}

	c.logger.Info("acquisition finished",
		logging.String("query", phrase),
		logging.Int("requested", count),
		logging.Int("downloaded", len(files)),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldEventType, "acquisition_finished"),
	)
	return result, nil
}

func (c *Client) buildArgs(phrase string, count int, destDir string) []string {
	args := []string{
		"--format", c.format,
		"--output", filepath.Join(destDir, outputTemplate),
		"--no-playlist",
		"--ignore-errors",
		"--no-progress",
		"--newline",
	}
	args = append(args, c.extraArgs...)
	return append(args, "ytsearch"+strconv.Itoa(count)+":"+phrase)
}

func listMedia(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && audio.Recognized(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func lastLine(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	// stdout must be drained before Wait closes the pipe.
	scanErr := scanLines(stdout, onStdout)

	if err := cmd.Wait(); err != nil {
		for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
			if onStdout != nil && strings.TrimSpace(line) != "" {
				onStdout(line)
			}
		}
		return fmt.Errorf("yt-dlp: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("read output: %w", scanErr)
	}
	return nil
}

func scanLines(r io.Reader, forward func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if forward != nil {
			forward(scanner.Text())
		}
	}
	return scanner.Err()
}
