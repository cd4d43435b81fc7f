package audio

import (
	"path/filepath"
	"strings"
	"time"
)

// Format is the PCM layout every clip is decoded into. Samples are signed
// 16-bit little-endian, interleaved by channel.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// samplesFor returns the interleaved sample count covering seconds.
func (f Format) samplesFor(seconds int) int {
	if seconds <= 0 || !f.valid() {
		return 0
	}
	return seconds * f.SampleRate * f.Channels
}

func (f Format) duration(samples int) time.Duration {
	if !f.valid() {
		return 0
	}
	frames := samples / f.Channels
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// SourceInfo is what the prober reported about a staged file before it was
// decoded. Zero values mean the field was not reported.
type SourceInfo struct {
	Seconds      float64
	SampleRate   int
	Bytes        int64
	AudioStreams int
}

// Clip is one decoded staged file.
type Clip struct {
	Source  string
	Format  Format
	Samples []int16
	Info    SourceInfo
}

// Duration reports the clip's playback length.
func (c Clip) Duration() time.Duration {
	return c.Format.duration(len(c.Samples))
}

// Trim returns the first seconds of c. Clips shorter than seconds are
// returned whole; nothing is ever padded. The returned clip shares storage
// with c.
func (c Clip) Trim(seconds int) Clip {
	limit := c.Format.samplesFor(seconds)
	if len(c.Samples) > limit {
		c.Samples = c.Samples[:limit]
	}
	return c
}

var recognizedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".webm": {},
	".mp4":  {},
}

// Recognized reports whether name carries one of the container extensions
// the assembler will attempt to decode.
func Recognized(name string) bool {
	_, ok := recognizedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions lists the recognized container extensions in sorted order.
func Extensions() []string {
	return []string{".m4a", ".mp3", ".mp4", ".wav", ".webm"}
}
