package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains scratch, state, and log directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	OutputDir  string `toml:"output_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Limits bounds the user supplied clip count and trim duration. Lower bounds
// are exclusive; a zero upper bound disables the check for that boundary.
type Limits struct {
	MinCount       int `toml:"min_count"`
	MinDuration    int `toml:"min_duration"`
	CLIMaxCount    int `toml:"cli_max_count"`
	CLIMaxDuration int `toml:"cli_max_duration"`
	WebMaxCount    int `toml:"web_max_count"`
	WebMaxDuration int `toml:"web_max_duration"`
}

// Workspace controls how runs share the staging and output directories.
type Workspace struct {
	IsolateRuns        bool `toml:"isolate_runs"`
	LockTimeoutSeconds int  `toml:"lock_timeout_seconds"`
}

// Acquisition configures the yt-dlp search-and-download collaborator.
type Acquisition struct {
	Binary         string   `toml:"binary"`
	QuerySuffix    string   `toml:"query_suffix"`
	Format         string   `toml:"format"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	ExtraArgs      []string `toml:"extra_args"`
}

// Assembly configures decoding, trimming, and MP3 export.
type Assembly struct {
	FFmpegBinary         string `toml:"ffmpeg_binary"`
	FFprobeBinary        string `toml:"ffprobe_binary"`
	SampleRate           int    `toml:"sample_rate"`
	Channels             int    `toml:"channels"`
	MP3Bitrate           string `toml:"mp3_bitrate"`
	DecodeWorkers        int    `toml:"decode_workers"`
	DecodeTimeoutSeconds int    `toml:"decode_timeout_seconds"`
	EncodeTimeoutSeconds int    `toml:"encode_timeout_seconds"`
}

// Delivery configures zip packaging and SMTP email delivery.
type Delivery struct {
	SMTPHost       string `toml:"smtp_host"`
	SMTPPort       int    `toml:"smtp_port"`
	Sender         string `toml:"sender"`
	Password       string `toml:"password"`
	EnvFile        string `toml:"env_file"`
	Subject        string `toml:"subject"`
	Body           string `toml:"body"`
	ArchiveName    string `toml:"archive_name"`
	AttachmentName string `toml:"attachment_name"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Web configures the HTTP form server.
type Web struct {
	Bind        string `toml:"bind"`
	MaxUploadMB int    `toml:"max_upload_mb"`
	OutputName  string `toml:"output_name"`
	IsolateRuns bool   `toml:"isolate_runs"`
	// APIToken, when set, is required as a bearer token on /api routes.
	APIToken string `toml:"api_token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mashup.
//
// Configuration sections by subsystem:
//   - Paths: staging, output, state, and log directories
//   - Limits: input bounds for clip count and trim duration
//   - Workspace: shared versus per-run directories and locking
//   - Acquisition: yt-dlp search and download
//   - Assembly: ffmpeg/ffprobe decoding and MP3 export
//   - Delivery: zip packaging and SMTP email
//   - Web: HTTP form server
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Limits      Limits      `toml:"limits"`
	Workspace   Workspace   `toml:"workspace"`
	Acquisition Acquisition `toml:"acquisition"`
	Assembly    Assembly    `toml:"assembly"`
	Delivery    Delivery    `toml:"delivery"`
	Web         Web         `toml:"web"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mashup.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. Staging and output
// directories are owned by the workspace and created when a run clears them.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the run history database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "mashup.db")
}

// LockPath returns the lock file guarding the shared staging and output directories.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "workspace.lock")
}

// AcquisitionTimeout returns the yt-dlp timeout, or zero when unbounded.
func (c *Config) AcquisitionTimeout() time.Duration {
	return seconds(c.Acquisition.TimeoutSeconds)
}

// DecodeTimeout returns the per-file decode timeout, or zero when unbounded.
func (c *Config) DecodeTimeout() time.Duration {
	return seconds(c.Assembly.DecodeTimeoutSeconds)
}

// EncodeTimeout returns the MP3 export timeout, or zero when unbounded.
func (c *Config) EncodeTimeout() time.Duration {
	return seconds(c.Assembly.EncodeTimeoutSeconds)
}

// DeliveryTimeout returns the SMTP timeout.
func (c *Config) DeliveryTimeout() time.Duration {
	return seconds(c.Delivery.TimeoutSeconds)
}

// LockTimeout returns how long a run waits for the shared workspace lock.
func (c *Config) LockTimeout() time.Duration {
	return seconds(c.Workspace.LockTimeoutSeconds)
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
