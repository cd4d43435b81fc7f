package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/runs"
	"mashup/internal/services"
	"mashup/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	pipelineOpts []workflow.Option

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag *string, opts ...workflow.Option) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		pipelineOpts: opts,
	}
}

// ensureConfig loads configuration without touching the filesystem beyond
// reading the file, so argument validation can run before any side effects.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = services.Fail(services.ErrConfiguration, "Could not load configuration: "+err.Error(), err)
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// runtime prepares directories, the logger, and the run history store.
func (c *commandContext) runtime() (*config.Config, *slog.Logger, *runs.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, nil, services.Fail(services.ErrConfiguration, err.Error(), err)
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	store, err := runs.Open(cfg)
	if err != nil {
		return nil, nil, nil, services.Fail(services.ErrConfiguration, "Could not open run history: "+err.Error(), err)
	}
	return cfg, logger, store, nil
}

func (c *commandContext) withStore(fn func(*config.Config, *runs.Store) error) error {
	cfg, _, store, err := c.runtime()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) withPipeline(fn func(*workflow.Pipeline) error) error {
	cfg, logger, store, err := c.runtime()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := append([]workflow.Option{workflow.WithStore(store)}, c.pipelineOpts...)
	pipeline, err := workflow.NewPipeline(cfg, logger, opts...)
	if err != nil {
		return services.Fail(services.ErrConfiguration, err.Error(), err)
	}
	return fn(pipeline)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
