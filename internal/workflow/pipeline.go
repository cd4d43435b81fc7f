package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mashup/internal/assembly"
	"mashup/internal/audio"
	"mashup/internal/config"
	"mashup/internal/delivery"
	"mashup/internal/logging"
	"mashup/internal/metrics"
	"mashup/internal/packaging"
	"mashup/internal/request"
	"mashup/internal/runs"
	"mashup/internal/services"
	"mashup/internal/services/ytdlp"
	"mashup/internal/staging"
)

// Origin identifies the front end that started a run.
type Origin string

const (
	OriginCLI Origin = "cli"
	OriginWeb Origin = "web"
)

// Acquirer downloads search results into a directory.
type Acquirer interface {
	Acquire(ctx context.Context, phrase string, count int, destDir string) (ytdlp.Result, error)
}

// Assembler builds the mashup from a staging directory.
type Assembler interface {
	Assemble(ctx context.Context, stagingDir string, trimSeconds int, outputPath string) (assembly.Artifact, error)
}

// Report describes a finished run.
type Report struct {
	RunID       string
	OutputPath  string
	ArchivePath string
	Delivered   bool
	Artifact    assembly.Artifact
	Elapsed     time.Duration
}

// Pipeline runs validated requests end to end: prepare the workspace, stage
// inputs, assemble, then optionally package and deliver.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	acquirer  Acquirer
	assembler Assembler
	delivery  delivery.Service
	store     *runs.Store
	metrics   *metrics.Metrics
	newRunID  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAcquirer overrides the yt-dlp acquirer.
func WithAcquirer(a Acquirer) Option {
	return func(p *Pipeline) { p.acquirer = a }
}

// WithAssembler overrides the ffmpeg-backed assembler.
func WithAssembler(a Assembler) Option {
	return func(p *Pipeline) { p.assembler = a }
}

// WithDelivery overrides the SMTP delivery service.
func WithDelivery(d delivery.Service) Option {
	return func(p *Pipeline) { p.delivery = d }
}

// WithStore records runs in history.
func WithStore(store *runs.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithMetrics records run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithRunIDs replaces the run identifier generator.
func WithRunIDs(next func() string) Option {
	return func(p *Pipeline) { p.newRunID = next }
}

// NewPipeline wires the production collaborators from cfg. Options replace
// individual collaborators.
func NewPipeline(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.acquirer == nil {
		client, err := ytdlp.New(cfg.Acquisition.Binary, cfg.AcquisitionTimeout(),
			ytdlp.WithFormat(cfg.Acquisition.Format),
			ytdlp.WithExtraArgs(cfg.Acquisition.ExtraArgs...),
			ytdlp.WithLogger(logging.NewComponentLogger(logger, "acquisition")),
		)
		if err != nil {
			return nil, fmt.Errorf("configure yt-dlp: %w", err)
		}
		p.acquirer = client
	}
	if p.assembler == nil {
		p.assembler = NewEngine(cfg, logger)
	}
	if p.delivery == nil {
		p.delivery = delivery.NewService(cfg, logger)
	}
	return p, nil
}

// NewEngine builds the ffmpeg-backed assembly engine described by cfg.
func NewEngine(cfg *config.Config, logger *slog.Logger) *assembly.Engine {
	format := audio.Format{SampleRate: cfg.Assembly.SampleRate, Channels: cfg.Assembly.Channels}
	codec := &audio.FFmpeg{
		FFmpegBinary:  cfg.Assembly.FFmpegBinary,
		FFprobeBinary: cfg.Assembly.FFprobeBinary,
		Format:        format,
		Bitrate:       cfg.Assembly.MP3Bitrate,
		DecodeTimeout: cfg.DecodeTimeout(),
		EncodeTimeout: cfg.EncodeTimeout(),
	}
	return assembly.NewEngine(codec, codec, format,
		assembly.WithWorkers(cfg.Assembly.DecodeWorkers),
		assembly.WithLogger(logging.NewComponentLogger(logger, "assembly")),
	)
}

// Run executes req. The returned report is populated as far as the run got,
// so a delivery failure still reports where the MP3 was written.
func (p *Pipeline) Run(ctx context.Context, origin Origin, req request.Request) (Report, error) {
	start := time.Now()
	report := Report{RunID: p.newRunID()}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, p.logger)

	p.recordStart(ctx, origin, req, report.RunID)
	p.metrics.RunStarted()

	err := p.execute(ctx, origin, req, &report)
	report.Elapsed = time.Since(start)

	p.metrics.RunFinished(string(origin), services.Kind(err), report.Elapsed, len(report.Artifact.Clips), len(report.Artifact.Skipped))
	p.recordFinish(ctx, report, err)

	if err != nil {
		logging.ErrorWithContext(logger, "mashup run failed", "run_failed",
			logging.String("kind", services.Kind(err)),
			logging.Error(err),
			logging.Duration("elapsed", report.Elapsed),
		)
		return report, err
	}
	logger.Info("mashup run complete",
		logging.String("output", report.OutputPath),
		logging.Bool("delivered", report.Delivered),
		logging.Duration("elapsed", report.Elapsed),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return report, nil
}

// Rejected accounts for a request that failed validation before a run was
// started.
func (p *Pipeline) Rejected(origin Origin, err error) {
	p.metrics.RunStarted()
	p.metrics.RunFinished(string(origin), services.Kind(err), 0, 0, 0)
	p.logger.Info("request rejected",
		logging.String("origin", string(origin)),
		logging.String("reason", services.UserMessage(err)),
		logging.String(logging.FieldEventType, "request_rejected"),
	)
}

func (p *Pipeline) execute(ctx context.Context, origin Origin, req request.Request, report *Report) error {
	if err := staging.CheckSources(req.Uploads); err != nil {
		return err
	}

	ws, err := staging.Open(services.WithStage(ctx, "workspace"), p.layout(origin), report.RunID, p.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Release(); err != nil {
			p.logger.Warn("failed to release workspace lock", logging.Error(err))
		}
	}()

	if err := p.stageInputs(services.WithStage(ctx, "acquire"), req, ws.StagingDir); err != nil {
		return err
	}

	outputPath := p.outputPath(origin, req, ws)
	artifact, err := p.assembler.Assemble(services.WithStage(ctx, "assemble"), ws.StagingDir, req.TrimSeconds, outputPath)
	report.Artifact = artifact
	if err != nil {
		return err
	}
	report.OutputPath = artifact.Path

	if strings.TrimSpace(req.Recipient) == "" {
		return nil
	}
	return p.deliver(services.WithStage(ctx, "deliver"), req.Recipient, ws.OutputDir, report)
}

func (p *Pipeline) stageInputs(ctx context.Context, req request.Request, dir string) error {
	switch req.Mode {
	case request.ModeSearch:
		_, err := p.acquirer.Acquire(ctx, req.SearchPhrase(p.cfg.Acquisition.QuerySuffix), req.Count, dir)
		return err
	case request.ModeUpload:
		_, err := staging.StageUploads(ctx, dir, req.Uploads, p.logger)
		return err
	default:
		return services.Fail(services.ErrValidation, fmt.Sprintf("Unsupported request mode %q.", req.Mode), nil)
	}
}

func (p *Pipeline) deliver(ctx context.Context, recipient, outputDir string, report *Report) error {
	archive := filepath.Join(outputDir, p.cfg.Delivery.AttachmentName)
	if _, err := packaging.Zip(report.OutputPath, archive, p.cfg.Delivery.ArchiveName); err != nil {
		p.metrics.RecordDelivery(false)
		return services.Fail(services.ErrDelivery, "Mashup was created but could not be packaged.", err)
	}
	report.ArchivePath = archive

	err := p.delivery.Deliver(ctx, recipient, archive)
	p.metrics.RecordDelivery(err == nil)
	if err != nil {
		return err
	}
	report.Delivered = true
	return nil
}

func (p *Pipeline) layout(origin Origin) staging.Layout {
	isolate := p.cfg.Workspace.IsolateRuns
	if origin == OriginWeb {
		isolate = p.cfg.Web.IsolateRuns
	}
	return staging.Layout{
		StagingRoot: p.cfg.Paths.StagingDir,
		OutputRoot:  p.cfg.Paths.OutputDir,
		LockPath:    p.cfg.LockPath(),
		Isolate:     isolate,
		LockTimeout: p.cfg.LockTimeout(),
	}
}

// outputPath places web output inside the run's output directory. CLI
// output goes exactly where the caller asked, relative to the working
// directory.
func (p *Pipeline) outputPath(origin Origin, req request.Request, ws *staging.Workspace) string {
	name := strings.TrimSpace(req.Output)
	if origin == OriginWeb || name == "" {
		if name == "" {
			name = p.cfg.Web.OutputName
		}
		return filepath.Join(ws.OutputDir, filepath.Base(name))
	}
	return name
}

func (p *Pipeline) recordStart(ctx context.Context, origin Origin, req request.Request, runID string) {
	if p.store == nil {
		return
	}
	err := p.store.Start(ctx, runs.Run{
		ID:          runID,
		Origin:      string(origin),
		Mode:        string(req.Mode),
		Performer:   req.Performer,
		Count:       req.Count,
		TrimSeconds: req.TrimSeconds,
		OutputPath:  req.Output,
		Recipient:   req.Recipient,
	})
	if err != nil {
		logging.WarnWithContext(p.logger, "failed to record run start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}

func (p *Pipeline) recordFinish(ctx context.Context, report Report, runErr error) {
	if p.store == nil {
		return
	}
	// Record even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	err := p.store.Finish(ctx, report.RunID, runs.Outcome{
		Err:      runErr,
		Clips:    len(report.Artifact.Clips),
		Skipped:  len(report.Artifact.Skipped),
		Duration: report.Artifact.Duration,
	})
	if err != nil {
		logging.WarnWithContext(p.logger, "failed to record run outcome", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history shows the run as still running"),
		)
	}
}
