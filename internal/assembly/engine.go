package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mashup/internal/audio"
	"mashup/internal/logging"
	"mashup/internal/services"
	"mashup/internal/textutil"
)

// Artifact describes an exported mashup.
type Artifact struct {
	Path     string
	Duration time.Duration
	Clips    []string
	Skipped  []audio.Skip
	Ignored  []string
}

// Engine turns a staging directory into a single MP3.
type Engine struct {
	decoder audio.Decoder
	encoder audio.Encoder
	format  audio.Format
	workers int
	logger  *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithWorkers bounds how many files are decoded at once. Values below one
// decode sequentially.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an Engine. format must match what decoder produces.
func NewEngine(decoder audio.Decoder, encoder audio.Encoder, format audio.Format, opts ...Option) *Engine {
	e := &Engine{
		decoder: decoder,
		encoder: encoder,
		format:  format,
		workers: 1,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Assemble decodes every recognized file directly inside stagingDir, keeps
// at most trimSeconds of each, concatenates them in file name order and
// exports the result to outputPath.
//
// Files that fail to decode are logged and skipped. When nothing could be
// appended the run fails with services.ErrNoAudioProcessed and outputPath
// is not written.
func (e *Engine) Assemble(ctx context.Context, stagingDir string, trimSeconds int, outputPath string) (Artifact, error) {
	logger := logging.WithContext(ctx, e.logger)

	sources, ignored, err := enumerate(stagingDir)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrConfiguration, "assemble", "list staging", stagingDir, err)
	}
	for _, name := range ignored {
		logger.Debug("ignoring unrecognized staged entry",
			logging.String(logging.FieldFile, name),
			logging.String(logging.FieldEventType, "entry_ignored"),
		)
	}

	results := e.decodeAll(ctx, sources, trimSeconds)
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	merged := audio.NewMerged(e.format, trimSeconds)
	for _, result := range results {
		merged = audio.Fold(merged, result)
	}
	for _, skip := range merged.Skipped {
		logging.WarnWithContext(logger, "skipping file that could not be decoded", "decode_skipped",
			logging.String(logging.FieldFile, skip.Source),
			logging.Error(skip.Err),
			logging.String(logging.FieldErrorHint, "file may be corrupt, empty, or use an unsupported codec"),
			logging.String(logging.FieldImpact, "file left out of the mashup"),
		)
	}

	if merged.Empty() {
		return Artifact{Skipped: merged.Skipped, Ignored: ignored},
			services.Fail(services.ErrNoAudioProcessed, "No audio files were processed.", nil)
	}

	if err := e.encoder.Encode(ctx, merged, outputPath); err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{
		Path:     outputPath,
		Duration: merged.Duration(),
		Clips:    merged.Sources,
		Skipped:  merged.Skipped,
		Ignored:  ignored,
	}
	logger.Info("mashup exported",
		logging.String("output", outputPath),
		logging.Int("clips", len(artifact.Clips)),
		logging.Int("skipped", len(artifact.Skipped)),
		logging.Duration("duration", artifact.Duration),
		logging.String(logging.FieldEventType, "mashup_exported"),
	)
	return artifact, nil
}

// decodeAll decodes sources with bounded parallelism. Results keep the
// order of sources regardless of completion order. Decode errors are
// carried in the results rather than returned through the group so one bad
// file never cancels its siblings.
func (e *Engine) decodeAll(ctx context.Context, sources []string, trimSeconds int) []audio.Result {
	results := make([]audio.Result, len(sources))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)

	for idx, path := range sources {
		group.Go(func() error {
			name := filepath.Base(path)
			if err := gctx.Err(); err != nil {
				results[idx] = audio.Result{Source: name, Err: err}
				return nil
			}
			start := time.Now()
			clip, err := e.decoder.Decode(gctx, path, trimSeconds)
			if err != nil {
				results[idx] = audio.Result{Source: name, Err: err}
				return nil
			}
			clip.Source = name
			e.logger.Debug("decoded clip",
				logging.String(logging.FieldFile, name),
				logging.String("title", textutil.ClipTitle(name)),
				logging.Duration("clip_duration", clip.Duration()),
				logging.Float64("source_seconds", clip.Info.Seconds),
				logging.Int("source_sample_rate", clip.Info.SampleRate),
				logging.Int64("source_bytes", clip.Info.Bytes),
				logging.Int("audio_streams", clip.Info.AudioStreams),
				logging.Duration("elapsed", time.Since(start)),
			)
			results[idx] = audio.Result{Source: name, Clip: clip}
			return nil
		})
	}
	_ = group.Wait()
	return results
}

// enumerate returns the recognized regular files directly inside dir,
// sorted by name, and the names of entries that were passed over.
func enumerate(dir string) ([]string, []string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil, fmt.Errorf("staging directory is empty")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var sources, ignored []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !audio.Recognized(entry.Name()) {
			ignored = append(ignored, entry.Name())
			continue
		}
		sources = append(sources, filepath.Join(dir, entry.Name()))
	}
	return sources, ignored, nil
}
