package workflow_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mashup/internal/assembly"
	"mashup/internal/audio"
	"mashup/internal/config"
	"mashup/internal/metrics"
	"mashup/internal/request"
	"mashup/internal/runs"
	"mashup/internal/services"
	"mashup/internal/services/ytdlp"
	"mashup/internal/testsupport"
	"mashup/internal/workflow"
)

type fakeAcquirer struct {
	clips  map[string]int
	err    error
	phrase string
	count  int
}

func (f *fakeAcquirer) Acquire(_ context.Context, phrase string, count int, destDir string) (ytdlp.Result, error) {
	f.phrase = phrase
	f.count = count
	var result ytdlp.Result
	for name, seconds := range f.clips {
		path := filepath.Join(destDir, name)
		content := ""
		if seconds >= 0 {
			content = testsupport.ClipContent(seconds)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return result, err
		}
		result.Files = append(result.Files, path)
	}
	if f.err != nil && len(result.Files) == 0 {
		return result, f.err
	}
	return result, nil
}

type fakeDelivery struct {
	mu        sync.Mutex
	err       error
	recipient string
	entries   []string
}

func (f *fakeDelivery) Deliver(_ context.Context, recipient, attachmentPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recipient = recipient
	reader, err := zip.OpenReader(attachmentPath)
	if err != nil {
		return err
	}
	defer reader.Close()
	for _, file := range reader.File {
		f.entries = append(f.entries, file.Name)
	}
	return f.err
}

type harness struct {
	cfg      *config.Config
	codec    *testsupport.FakeCodec
	acquirer *fakeAcquirer
	delivery *fakeDelivery
	store    *runs.Store
	metrics  *metrics.Metrics
	pipeline *workflow.Pipeline
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	format := audio.Format{SampleRate: cfg.Assembly.SampleRate, Channels: cfg.Assembly.Channels}
	h := &harness{
		cfg:      cfg,
		codec:    testsupport.NewFakeCodec(format),
		acquirer: &fakeAcquirer{},
		delivery: &fakeDelivery{},
		store:    testsupport.MustOpenStore(t, cfg),
		metrics:  metrics.New(),
	}
	engine := assembly.NewEngine(h.codec, h.codec, format, assembly.WithWorkers(2))
	ids := 0
	pipeline, err := workflow.NewPipeline(cfg, nil,
		workflow.WithAcquirer(h.acquirer),
		workflow.WithAssembler(engine),
		workflow.WithDelivery(h.delivery),
		workflow.WithStore(h.store),
		workflow.WithMetrics(h.metrics),
		workflow.WithRunIDs(func() string {
			ids++
			return fmt.Sprintf("run%d", ids)
		}),
	)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	h.pipeline = pipeline
	return h
}

func searchRequest(t *testing.T, output string) request.Request {
	t.Helper()
	req, err := request.ParseArgs([]string{"Test Singer", "11", "21", output}, request.Bounds{MinCount: 10, MinDuration: 20})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	return req
}

func TestRunSearchProducesOutput(t *testing.T) {
	h := newHarness(t)
	h.acquirer.clips = map[string]int{"a.webm": 30, "b.webm": 10}
	output := filepath.Join(testsupport.BaseDir(h.cfg), "mix.mp3")

	report, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, searchRequest(t, output))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.acquirer.phrase != "Test Singer songs" || h.acquirer.count != 11 {
		t.Fatalf("unexpected acquisition %q/%d", h.acquirer.phrase, h.acquirer.count)
	}
	if report.OutputPath != output {
		t.Fatalf("output path = %q, want %q", report.OutputPath, output)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	encoded := h.codec.Encoded()
	if len(encoded) != 1 {
		t.Fatalf("expected one encode, got %d", len(encoded))
	}
	// 21 seconds from a.webm, all 10 from b.webm.
	if got := len(encoded[0].Samples); got != 31*h.cfg.Assembly.SampleRate {
		t.Fatalf("unexpected sample count %d", got)
	}
	if report.Delivered || report.ArchivePath != "" {
		t.Fatalf("no recipient should mean no delivery: %+v", report)
	}

	run, err := h.store.Get(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != runs.StatusSucceeded || run.Clips != 2 || run.Origin != "cli" {
		t.Fatalf("unexpected history row %+v", run)
	}
	if got := testutil.ToFloat64(h.metrics.RunsTotal.WithLabelValues("cli", "ok")); got != 1 {
		t.Fatalf("runs_total{cli,ok} = %v", got)
	}
}

func TestRunAcquisitionFailure(t *testing.T) {
	h := newHarness(t)
	h.acquirer.err = services.Fail(services.ErrAcquisition, "Could not download videos right now. Please try again later.", nil)

	_, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, searchRequest(t, filepath.Join(testsupport.BaseDir(h.cfg), "x.mp3")))
	if !errors.Is(err, services.ErrAcquisition) {
		t.Fatalf("expected acquisition error, got %v", err)
	}
	if len(h.codec.Encoded()) != 0 {
		t.Fatal("nothing should be encoded")
	}
}

func TestRunNoAudioWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.acquirer.clips = map[string]int{"broken.webm": -1}
	output := filepath.Join(testsupport.BaseDir(h.cfg), "none.mp3")

	_, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, searchRequest(t, output))
	if !errors.Is(err, services.ErrNoAudioProcessed) {
		t.Fatalf("expected no audio error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("output should not exist: %v", statErr)
	}
}

func TestRunUploadsWithDelivery(t *testing.T) {
	h := newHarness(t)
	src := t.TempDir()
	first := filepath.Join(src, "first.mp3")
	second := filepath.Join(src, "notes.txt")
	testsupport.WriteClip(t, first, 40)
	testsupport.WriteFile(t, second, "not audio")

	req, err := request.ParseFiles("25", "ignored.mp3", []string{first, second}, request.Bounds{MinCount: 10, MinDuration: 20, MaxDuration: 60})
	if err != nil {
		t.Fatalf("ParseFiles: %v", err)
	}
	req, err = request.WithRecipient(req, "fan@example.com")
	if err != nil {
		t.Fatalf("WithRecipient: %v", err)
	}

	report, err := h.pipeline.Run(context.Background(), workflow.OriginWeb, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Delivered || h.delivery.recipient != "fan@example.com" {
		t.Fatalf("expected delivery, report %+v", report)
	}
	if len(h.delivery.entries) != 1 || h.delivery.entries[0] != "mashup.mp3" {
		t.Fatalf("unexpected archive entries %v", h.delivery.entries)
	}
	if filepath.Dir(filepath.Dir(report.OutputPath)) != h.cfg.Paths.OutputDir {
		t.Fatalf("web output should live in a run directory, got %q", report.OutputPath)
	}
	if len(report.Artifact.Clips) != 1 || len(report.Artifact.Ignored) != 1 {
		t.Fatalf("unexpected artifact %+v", report.Artifact)
	}
	if got := testutil.ToFloat64(h.metrics.Deliveries.WithLabelValues("sent")); got != 1 {
		t.Fatalf("deliveries{sent} = %v", got)
	}
}

func TestRunDeliveryFailureKeepsOutput(t *testing.T) {
	h := newHarness(t)
	h.acquirer.clips = map[string]int{"a.webm": 30}
	h.delivery.err = services.Fail(services.ErrDelivery, "Mashup was created but the email could not be sent.", errors.New("smtp down"))
	req, err := request.WithRecipient(searchRequest(t, filepath.Join(testsupport.BaseDir(h.cfg), "mix.mp3")), "fan@example.com")
	if err != nil {
		t.Fatalf("WithRecipient: %v", err)
	}

	report, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, req)
	if !errors.Is(err, services.ErrDelivery) {
		t.Fatalf("expected delivery error, got %v", err)
	}
	if report.OutputPath == "" {
		t.Fatal("report should carry the output path")
	}
	if _, statErr := os.Stat(report.OutputPath); statErr != nil {
		t.Fatalf("output should remain: %v", statErr)
	}
	run, err := h.store.Get(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != runs.StatusFailed || run.ErrorKind != "delivery" {
		t.Fatalf("unexpected history row %+v", run)
	}
}

func TestRunMissingUploadFailsBeforeClearing(t *testing.T) {
	h := newHarness(t, testsupport.WithIsolatedRuns(false))
	leftover := filepath.Join(h.cfg.Paths.StagingDir, "previous.mp3")
	testsupport.WriteFile(t, leftover, "keep")

	req := request.Request{Mode: request.ModeUpload, TrimSeconds: 25, Output: "x.mp3",
		Uploads: []request.Upload{{Path: filepath.Join(t.TempDir(), "missing.mp3")}}}
	_, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(leftover); statErr != nil {
		t.Fatalf("staging dir should be untouched: %v", statErr)
	}
}

func TestRunSharedWorkspaceClearsPreviousRun(t *testing.T) {
	h := newHarness(t, testsupport.WithIsolatedRuns(false))
	stale := filepath.Join(h.cfg.Paths.StagingDir, "stale.webm")
	testsupport.WriteClip(t, stale, 30)
	h.acquirer.clips = map[string]int{"fresh.webm": 30}

	report, err := h.pipeline.Run(context.Background(), workflow.OriginCLI, searchRequest(t, filepath.Join(testsupport.BaseDir(h.cfg), "mix.mp3")))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Artifact.Clips) != 1 || report.Artifact.Clips[0] != "fresh.webm" {
		t.Fatalf("stale clip leaked into run: %v", report.Artifact.Clips)
	}
}

func TestRejectedCountsValidationFailure(t *testing.T) {
	h := newHarness(t)
	_, err := request.ParseArgs([]string{"a", "1", "1", "o"}, request.Bounds{MinCount: 10, MinDuration: 20})
	h.pipeline.Rejected(workflow.OriginWeb, err)
	if got := testutil.ToFloat64(h.metrics.RunsTotal.WithLabelValues("web", "validation")); got != 1 {
		t.Fatalf("runs_total{web,validation} = %v", got)
	}
}
