package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"mashup/internal/config"
	"mashup/internal/deps"
	"mashup/internal/logging"
	"mashup/internal/metrics"
	"mashup/internal/preflight"
	"mashup/internal/runs"
	"mashup/internal/staging"
	"mashup/internal/web"
	"mashup/internal/workflow"
)

// staleRunAge is how old an isolated run directory must be before startup
// removes it.
const staleRunAge = 24 * time.Hour

var errAlreadyRunning = errors.New("another mashupd instance is running")

type daemon struct {
	server *web.Server
	store  *runs.Store
	lock   *flock.Flock
}

// start takes the daemon lock, opens run history, and serves the web form
// until ctx is cancelled. opts replace pipeline collaborators in tests.
func start(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...workflow.Option) (*daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("prepare directories: %w", err)
	}
	lock := flock.New(daemonLockPath(cfg))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return nil, errAlreadyRunning
	}
	d := &daemon{lock: lock}

	store, err := runs.Open(cfg)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open run history: %w", err)
	}
	d.store = store

	logStartupChecks(ctx, cfg, logger)
	for _, root := range []string{cfg.Paths.StagingDir, cfg.Paths.OutputDir} {
		staging.CleanStale(root, staleRunAge, logger)
	}

	m := metrics.New()
	pipelineOpts := append([]workflow.Option{workflow.WithStore(store), workflow.WithMetrics(m)}, opts...)
	pipeline, err := workflow.NewPipeline(cfg, logger, pipelineOpts...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	server, err := web.New(cfg, pipeline, store, m, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	if err := server.Start(ctx); err != nil {
		d.Close()
		return nil, err
	}
	d.server = server
	return d, nil
}

func (d *daemon) Addr() string {
	return d.server.Addr()
}

func (d *daemon) Close() {
	if d == nil {
		return
	}
	if d.server != nil {
		d.server.Stop()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
	if d.lock != nil {
		_ = d.lock.Unlock()
	}
}

func daemonLockPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.StateDir, "mashupd.lock")
}

func logStartupChecks(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	for _, check := range preflight.Failed(preflight.RunAll(ctx, cfg)) {
		if check.Name == "Staging directory" || check.Name == "Output directory" {
			// Created by the first run.
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "runs may fail"),
		)
	}
	statuses := preflight.CheckSystemDeps(ctx, cfg)
	for _, dep := range deps.Missing(statuses) {
		logging.WarnWithContext(logger, "required dependency missing", "dependency_missing",
			logging.String("dependency", dep.Name),
			logging.String("detail", dep.Detail),
			logging.String(logging.FieldErrorHint, "install it or set its path in the config file"),
			logging.String(logging.FieldImpact, "mashup runs will fail"),
		)
	}
	attrs := []logging.Attr{logging.String(logging.FieldEventType, "dependency_snapshot")}
	for _, dep := range statuses {
		attrs = append(attrs, logging.Bool(dep.Name+"_available", dep.Available))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
