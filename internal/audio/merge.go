package audio

import (
	"errors"
	"time"
)

// Result is the outcome of decoding one staged file. Exactly one of Clip
// and Err is meaningful.
type Result struct {
	Source string
	Clip   Clip
	Err    error
}

// Skip records a staged file that contributed nothing to the mashup.
type Skip struct {
	Source string
	Err    error
}

// Merged is the running concatenation of accepted clips.
type Merged struct {
	Format      Format
	TrimSeconds int
	Samples     []int16
	Sources     []string
	Skipped     []Skip
}

// NewMerged returns an empty accumulator that truncates every appended clip
// to trimSeconds.
func NewMerged(format Format, trimSeconds int) Merged {
	return Merged{Format: format, TrimSeconds: trimSeconds}
}

var errFormatMismatch = errors.New("decoded format does not match output format")

// Fold appends r to m. Failed results and clips in a different PCM layout
// are recorded as skips and otherwise ignored, so a bad input can never
// abort a mashup. The returned value may share storage with m.
func Fold(m Merged, r Result) Merged {
	if r.Err != nil {
		m.Skipped = append(m.Skipped, Skip{Source: r.Source, Err: r.Err})
		return m
	}
	if r.Clip.Format != m.Format {
		m.Skipped = append(m.Skipped, Skip{Source: r.Source, Err: errFormatMismatch})
		return m
	}
	clip := r.Clip.Trim(m.TrimSeconds)
	m.Samples = append(m.Samples, clip.Samples...)
	m.Sources = append(m.Sources, r.Source)
	return m
}

// Empty reports whether no clip has been appended.
func (m Merged) Empty() bool {
	return len(m.Sources) == 0
}

// Duration reports the concatenated playback length.
func (m Merged) Duration() time.Duration {
	return m.Format.duration(len(m.Samples))
}
