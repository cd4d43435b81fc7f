package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mashup/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Decoding runs at 100 Hz mono so test clips stay tiny.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "downloads")
	cfgVal.Paths.OutputDir = filepath.Join(base, "outputs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Assembly.SampleRate = 100
	cfgVal.Assembly.Channels = 1
	cfgVal.Workspace.LockTimeoutSeconds = 1
	cfgVal.Web.Bind = "127.0.0.1:0"
	cfgVal.Delivery.EnvFile = filepath.Join(base, "missing.env")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithIsolatedRuns toggles per-run scratch directories for CLI runs.
func WithIsolatedRuns(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workspace.IsolateRuns = enabled
	}
}

// WithCredentials sets explicit SMTP credentials on the test config.
func WithCredentials(sender, password string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Delivery.Sender = sender
		b.cfg.Delivery.Password = password
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed with scripts that exit successfully.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "yt-dlp"}
		}
		scripts := make(map[string]string, len(names))
		for _, name := range names {
			scripts[name] = "#!/bin/sh\nexit 0\n"
		}
		installScripts(b, scripts)
	}
}

// WithScripts installs the given shell scripts as executables on PATH and
// points the config's binaries at them when the names match.
func WithScripts(scripts map[string]string) ConfigOption {
	return func(b *configBuilder) {
		installScripts(b, scripts)
	}
}

func installScripts(b *configBuilder, scripts map[string]string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, body := range scripts {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte(body), 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", name, err)
		}
		switch name {
		case "ffmpeg":
			b.cfg.Assembly.FFmpegBinary = target
		case "ffprobe":
			b.cfg.Assembly.FFprobeBinary = target
		case "yt-dlp":
			b.cfg.Acquisition.Binary = target
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}

// WriteConfigFile serialises cfg to config.toml under the test base
// directory and returns the path, for commands that load configuration from
// disk.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
