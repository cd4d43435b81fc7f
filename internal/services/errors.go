package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrAcquisition      = errors.New("acquisition error")
	ErrDecode           = errors.New("decode error")
	ErrNoAudioProcessed = errors.New("no audio processed")
	ErrDelivery         = errors.New("delivery error")
	ErrConfiguration    = errors.New("configuration error")
	ErrExternalTool     = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Failure pairs a classification marker with the short message shown to the
// person who started the run.
type Failure struct {
	Marker  error
	Message string
	Err     error
}

// Fail constructs a Failure. err may be nil.
func Fail(marker error, message string, err error) *Failure {
	return &Failure{Marker: marker, Message: strings.TrimSpace(message), Err: err}
}

func (f *Failure) Error() string {
	parts := make([]string, 0, 3)
	if f.Marker != nil {
		parts = append(parts, f.Marker.Error())
	}
	if f.Message != "" {
		parts = append(parts, f.Message)
	}
	if f.Err != nil {
		parts = append(parts, f.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if f.Marker != nil {
		errs = append(errs, f.Marker)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// UserMessage returns a short human readable description of err suitable for
// CLI output or a plain-text HTTP response.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var failure *Failure
	if errors.As(err, &failure) && failure.Message != "" {
		return failure.Message
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "Run cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Run timed out."
	case errors.Is(err, ErrValidation):
		return "Invalid input."
	case errors.Is(err, ErrAcquisition):
		return "Could not download videos right now. Please try again later."
	case errors.Is(err, ErrNoAudioProcessed):
		return "No audio files were processed."
	case errors.Is(err, ErrDelivery):
		return "Mashup was created but could not be delivered."
	case errors.Is(err, ErrConfiguration):
		return "Mashup is not configured correctly: " + err.Error()
	default:
		return "Error occurred: " + err.Error()
	}
}

// Kind classifies err into a stable label used for run history and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrAcquisition):
		return "acquisition"
	case errors.Is(err, ErrNoAudioProcessed):
		return "no_audio"
	case errors.Is(err, ErrDelivery):
		return "delivery"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
