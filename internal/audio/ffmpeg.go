package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mashup/internal/fileutil"
	"mashup/internal/media/ffprobe"
	"mashup/internal/services"
)

// Decoder turns a staged file into PCM. maxSeconds bounds how much audio is
// decoded; zero or less decodes the whole file.
type Decoder interface {
	Decode(ctx context.Context, path string, maxSeconds int) (Clip, error)
}

// Encoder writes merged PCM to outputPath as MP3.
type Encoder interface {
	Encode(ctx context.Context, merged Merged, outputPath string) error
}

// FFmpeg decodes and encodes through the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegBinary  string
	FFprobeBinary string
	Format        Format
	Bitrate       string
	DecodeTimeout time.Duration
	EncodeTimeout time.Duration
}

// Decode probes path for an audio stream and decodes at most maxSeconds of
// it into f.Format. Any failure is tagged services.ErrDecode.
func (f *FFmpeg) Decode(ctx context.Context, path string, maxSeconds int) (Clip, error) {
	name := filepath.Base(path)
	if f.DecodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.DecodeTimeout)
		defer cancel()
	}

	probe, err := ffprobe.Inspect(ctx, f.FFprobeBinary, path)
	if err != nil {
		return Clip{}, services.Wrap(services.ErrDecode, "decode", name, "probe failed", err)
	}
	stream, ok := probe.PrimaryAudio()
	if !ok {
		return Clip{}, services.Wrap(services.ErrDecode, "decode", name, "no audio stream", nil)
	}
	seconds, reported := probe.AudioSeconds()
	if reported && seconds <= 0 {
		return Clip{}, services.Wrap(services.ErrDecode, "decode", name, "audio stream has zero duration", nil)
	}
	info := SourceInfo{
		Seconds:      seconds,
		SampleRate:   stream.SampleRateHz(),
		Bytes:        probe.SizeBytes(),
		AudioStreams: probe.AudioStreamCount(),
	}

	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error", "-i", path, "-vn"}
	if maxSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(maxSeconds))
	}
	args = append(args,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.Format.SampleRate),
		"-ac", strconv.Itoa(f.Format.Channels),
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, f.ffmpeg(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Clip{}, services.Wrap(services.ErrDecode, "decode", name, strings.TrimSpace(stderr.String()), err)
	}

	samples := bytesToSamples(out)
	if len(samples) < f.Format.Channels {
		return Clip{}, services.Wrap(services.ErrDecode, "decode", name, "no samples decoded", nil)
	}
	return Clip{Source: name, Format: f.Format, Samples: samples, Info: info}, nil
}

// Encode streams merged into ffmpeg's libmp3lame encoder. The MP3 is written
// to a temporary file beside outputPath and renamed into place, so a failed
// encode never leaves a partial artifact.
func (f *FFmpeg) Encode(ctx context.Context, merged Merged, outputPath string) error {
	if merged.Empty() {
		return services.Wrap(services.ErrNoAudioProcessed, "export", "", "nothing to encode", nil)
	}
	if f.EncodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.EncodeTimeout)
		defer cancel()
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := fileutil.TempFileFor(outputPath)
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmp)
		}
	}()

	args := []string{
		"-nostdin", "-hide_banner", "-loglevel", "error", "-y",
		"-f", "s16le",
		"-ar", strconv.Itoa(merged.Format.SampleRate),
		"-ac", strconv.Itoa(merged.Format.Channels),
		"-i", "pipe:0",
		"-codec:a", "libmp3lame",
	}
	if bitrate := strings.TrimSpace(f.Bitrate); bitrate != "" {
		args = append(args, "-b:a", bitrate)
	}
	args = append(args, "-f", "mp3", tmp)

	cmd := exec.CommandContext(ctx, f.ffmpeg(), args...)
	cmd.Stdin = newSampleReader(merged.Samples)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
			return ctxErr
		}
		return services.Wrap(services.ErrExternalTool, "export", "ffmpeg", strings.TrimSpace(stderr.String()), err)
	}

	if err := fileutil.ReplaceFile(tmp, outputPath); err != nil {
		return fmt.Errorf("move encoded output: %w", err)
	}
	keep = true
	return nil
}

func (f *FFmpeg) ffmpeg() string {
	if bin := strings.TrimSpace(f.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}
