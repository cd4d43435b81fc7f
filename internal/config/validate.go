package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.StagingDir == c.Paths.OutputDir {
		return errors.New("paths.staging_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MinCount < 0 {
		return errors.New("limits.min_count must be >= 0")
	}
	if c.Limits.MinDuration < 0 {
		return errors.New("limits.min_duration must be >= 0")
	}
	for key, value := range map[string]int{
		"limits.cli_max_duration": c.Limits.CLIMaxDuration,
		"limits.web_max_duration": c.Limits.WebMaxDuration,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
		if value > 0 && value <= c.Limits.MinDuration {
			return fmt.Errorf("%s must be greater than limits.min_duration", key)
		}
	}
	for key, value := range map[string]int{
		"limits.cli_max_count": c.Limits.CLIMaxCount,
		"limits.web_max_count": c.Limits.WebMaxCount,
	} {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
		if value > 0 && value <= c.Limits.MinCount {
			return fmt.Errorf("%s must be greater than limits.min_count", key)
		}
	}
	return nil
}

func (c *Config) validateAssembly() error {
	if err := ensurePositiveMap(map[string]int{
		"assembly.sample_rate":    c.Assembly.SampleRate,
		"assembly.channels":       c.Assembly.Channels,
		"assembly.decode_workers": c.Assembly.DecodeWorkers,
	}); err != nil {
		return err
	}
	if c.Assembly.Channels > 2 {
		return errors.New("assembly.channels must be 1 or 2")
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.SMTPPort > 65535 {
		return errors.New("delivery.smtp_port must be a valid TCP port")
	}
	if strings.ContainsAny(c.Delivery.ArchiveName, `/\`) {
		return errors.New("delivery.archive_name must be a bare file name")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
