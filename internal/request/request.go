package request

import (
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"

	"mashup/internal/config"
	"mashup/internal/services"
)

// Mode selects how the staging directory is populated.
type Mode string

const (
	// ModeSearch downloads clips by searching for a performer's songs.
	ModeSearch Mode = "search"
	// ModeUpload stages files supplied directly by the caller.
	ModeUpload Mode = "upload"
)

// Usage is printed when the CLI receives the wrong number of arguments.
const Usage = "Usage: mashup <SingerName> <NumberOfVideos> <AudioDuration> <OutputFileName>"

// Bounds holds the input limits enforced at one entry point. Minimums are
// exclusive; a zero maximum means no upper bound.
type Bounds struct {
	MinCount    int
	MinDuration int
	MaxCount    int
	MaxDuration int
}

// CLIBounds returns the limits applied to command-line invocations.
func CLIBounds(cfg *config.Config) Bounds {
	return Bounds{
		MinCount:    cfg.Limits.MinCount,
		MinDuration: cfg.Limits.MinDuration,
		MaxCount:    cfg.Limits.CLIMaxCount,
		MaxDuration: cfg.Limits.CLIMaxDuration,
	}
}

// WebBounds returns the limits applied to form submissions.
func WebBounds(cfg *config.Config) Bounds {
	return Bounds{
		MinCount:    cfg.Limits.MinCount,
		MinDuration: cfg.Limits.MinDuration,
		MaxCount:    cfg.Limits.WebMaxCount,
		MaxDuration: cfg.Limits.WebMaxDuration,
	}
}

// Upload is one caller supplied file. Open streams the content; when Open is
// nil the file is copied from Path.
type Upload struct {
	Name string
	Path string
	Open func() (io.ReadCloser, error)
}

// Request is a validated mashup request. Values are only produced by the
// Parse functions in this package.
type Request struct {
	Mode        Mode
	Performer   string
	Count       int
	TrimSeconds int
	Output      string
	Recipient   string
	Uploads     []Upload
}

// SearchPhrase returns the query handed to the acquisition collaborator.
func (r Request) SearchPhrase(suffix string) string {
	suffix = strings.TrimSpace(suffix)
	if suffix == "" {
		return r.Performer
	}
	return r.Performer + " " + suffix
}

func invalid(format string, args ...any) error {
	return services.Fail(services.ErrValidation, fmt.Sprintf(format, args...), nil)
}

// ErrUsage reports wrong-arity CLI input.
var ErrUsage = services.Fail(services.ErrValidation, Usage, nil)

// ParseArgs validates the four positional CLI arguments:
// performer, clip count, trim duration in seconds, and output file name.
func ParseArgs(args []string, bounds Bounds) (Request, error) {
	if len(args) != 4 {
		return Request{}, ErrUsage
	}

	count, errCount := parseInt(args[1])
	duration, errDuration := parseInt(args[2])
	if errCount != nil || errDuration != nil {
		return Request{}, invalid("NumberOfVideos and AudioDuration must be integers.")
	}

	req := Request{
		Mode:        ModeSearch,
		Performer:   strings.TrimSpace(args[0]),
		Count:       count,
		TrimSeconds: duration,
		Output:      strings.TrimSpace(args[3]),
	}
	if err := validateSearch(req, bounds); err != nil {
		return Request{}, err
	}
	if err := validateDuration(req.TrimSeconds, bounds); err != nil {
		return Request{}, err
	}
	if req.Output == "" {
		return Request{}, invalid("OutputFileName must not be empty.")
	}
	return req, nil
}

// ParseFiles validates a local-file invocation: trim duration, output name,
// and at least one input path.
func ParseFiles(duration, output string, paths []string, bounds Bounds) (Request, error) {
	seconds, err := parseInt(duration)
	if err != nil {
		return Request{}, invalid("AudioDuration must be an integer.")
	}
	if err := validateDuration(seconds, bounds); err != nil {
		return Request{}, err
	}
	output = strings.TrimSpace(output)
	if output == "" {
		return Request{}, invalid("OutputFileName must not be empty.")
	}

	uploads := make([]Upload, 0, len(paths))
	for _, path := range paths {
		if path = strings.TrimSpace(path); path != "" {
			uploads = append(uploads, Upload{Path: path})
		}
	}
	if len(uploads) == 0 {
		return Request{}, invalid("Please provide at least one audio file.")
	}

	return Request{
		Mode:        ModeUpload,
		TrimSeconds: seconds,
		Output:      output,
		Uploads:     uploads,
	}, nil
}

// WithRecipient validates and attaches an email recipient to req.
func WithRecipient(req Request, address string) (Request, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return req, nil
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return Request{}, invalid("Please provide a valid email address.")
	}
	req.Recipient = parsed.Address
	return req, nil
}

func validateSearch(req Request, bounds Bounds) error {
	if req.Performer == "" {
		return invalid("SingerName must not be empty.")
	}
	if req.Count <= bounds.MinCount {
		return invalid("NumberOfVideos must be greater than %d.", bounds.MinCount)
	}
	if bounds.MaxCount > 0 && req.Count > bounds.MaxCount {
		return invalid("Maximum number of videos allowed is %d.", bounds.MaxCount)
	}
	return nil
}

func validateDuration(seconds int, bounds Bounds) error {
	if seconds <= bounds.MinDuration {
		return invalid("AudioDuration must be greater than %d seconds.", bounds.MinDuration)
	}
	if bounds.MaxDuration > 0 && seconds > bounds.MaxDuration {
		return invalid("Maximum duration allowed is %d seconds.", bounds.MaxDuration)
	}
	return nil
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
