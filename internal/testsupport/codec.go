package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"mashup/internal/audio"
	"mashup/internal/services"
)

// FakeCodec decodes files written by WriteClip and encodes by writing a
// short text marker, so pipelines can run without ffmpeg.
type FakeCodec struct {
	Format audio.Format

	mu      sync.Mutex
	encoded []audio.Merged
}

// NewFakeCodec returns a codec producing format.
func NewFakeCodec(format audio.Format) *FakeCodec {
	return &FakeCodec{Format: format}
}

// Decode implements audio.Decoder.
func (c *FakeCodec) Decode(ctx context.Context, path string, maxSeconds int) (audio.Clip, error) {
	if err := ctx.Err(); err != nil {
		return audio.Clip{}, err
	}
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return audio.Clip{}, services.Wrap(services.ErrDecode, "decode", name, "read", err)
	}
	value, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "seconds=")
	if !ok {
		return audio.Clip{}, services.Wrap(services.ErrDecode, "decode", name, "not a fake clip", nil)
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return audio.Clip{}, services.Wrap(services.ErrDecode, "decode", name, "bad length", err)
	}
	if maxSeconds > 0 && seconds > maxSeconds {
		seconds = maxSeconds
	}
	samples := make([]int16, seconds*c.Format.SampleRate*c.Format.Channels)
	return audio.Clip{Source: name, Format: c.Format, Samples: samples}, nil
}

// Encode implements audio.Encoder.
func (c *FakeCodec) Encode(_ context.Context, merged audio.Merged, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	c.mu.Lock()
	c.encoded = append(c.encoded, merged)
	c.mu.Unlock()
	body := fmt.Sprintf("FAKEMP3 clips=%d duration=%s\n", len(merged.Sources), merged.Duration())
	return os.WriteFile(outputPath, []byte(body), 0o644)
}

// Encoded returns every merge passed to Encode.
func (c *FakeCodec) Encoded() []audio.Merged {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]audio.Merged(nil), c.encoded...)
}
