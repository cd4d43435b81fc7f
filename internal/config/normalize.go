package config

import (
	"fmt"
	"net"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAcquisition()
	c.normalizeAssembly()
	if err := c.normalizeDelivery(); err != nil {
		return err
	}
	c.normalizeWeb()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.Binary = strings.TrimSpace(c.Acquisition.Binary)
	if c.Acquisition.Binary == "" {
		c.Acquisition.Binary = defaultYtDlpBinary
	}
	c.Acquisition.QuerySuffix = strings.TrimSpace(c.Acquisition.QuerySuffix)
	c.Acquisition.Format = strings.TrimSpace(c.Acquisition.Format)
	if c.Acquisition.Format == "" {
		c.Acquisition.Format = defaultDownloadFormat
	}
	if c.Acquisition.TimeoutSeconds < 0 {
		c.Acquisition.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeAssembly() {
	c.Assembly.FFmpegBinary = strings.TrimSpace(c.Assembly.FFmpegBinary)
	if c.Assembly.FFmpegBinary == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	c.Assembly.FFprobeBinary = strings.TrimSpace(c.Assembly.FFprobeBinary)
	if c.Assembly.FFprobeBinary == "" {
		c.Assembly.FFprobeBinary = defaultFFprobeBinary
	}
	c.Assembly.MP3Bitrate = strings.ToLower(strings.TrimSpace(c.Assembly.MP3Bitrate))
	if c.Assembly.MP3Bitrate == "" {
		c.Assembly.MP3Bitrate = defaultMP3Bitrate
	}
	if c.Assembly.DecodeWorkers <= 0 {
		c.Assembly.DecodeWorkers = 1
	}
}

func (c *Config) normalizeDelivery() error {
	c.Delivery.SMTPHost = strings.TrimSpace(c.Delivery.SMTPHost)
	if c.Delivery.SMTPHost == "" {
		c.Delivery.SMTPHost = defaultSMTPHost
	}
	if c.Delivery.SMTPPort <= 0 {
		c.Delivery.SMTPPort = defaultSMTPPort
	}
	c.Delivery.Sender = strings.TrimSpace(c.Delivery.Sender)
	if strings.TrimSpace(c.Delivery.EnvFile) != "" {
		var err error
		if c.Delivery.EnvFile, err = expandPath(strings.TrimSpace(c.Delivery.EnvFile)); err != nil {
			return fmt.Errorf("delivery.env_file: %w", err)
		}
	}
	if strings.TrimSpace(c.Delivery.Subject) == "" {
		c.Delivery.Subject = defaultMailSubject
	}
	if strings.TrimSpace(c.Delivery.Body) == "" {
		c.Delivery.Body = defaultMailBody
	}
	c.Delivery.ArchiveName = strings.TrimSpace(c.Delivery.ArchiveName)
	if c.Delivery.ArchiveName == "" {
		c.Delivery.ArchiveName = defaultArchiveName
	}
	c.Delivery.AttachmentName = strings.TrimSpace(c.Delivery.AttachmentName)
	if c.Delivery.AttachmentName == "" {
		c.Delivery.AttachmentName = defaultAttachmentName
	}
	return nil
}

func (c *Config) normalizeWeb() {
	c.Web.Bind = strings.TrimSpace(c.Web.Bind)
	if c.Web.Bind == "" {
		c.Web.Bind = defaultWebBind
	}
	if port, ok := os.LookupEnv("PORT"); ok && strings.TrimSpace(port) != "" {
		host, _, err := net.SplitHostPort(c.Web.Bind)
		if err != nil {
			host = "0.0.0.0"
		}
		c.Web.Bind = net.JoinHostPort(host, strings.TrimSpace(port))
	}
	if c.Web.MaxUploadMB <= 0 {
		c.Web.MaxUploadMB = defaultMaxUploadMB
	}
	c.Web.OutputName = strings.TrimSpace(c.Web.OutputName)
	if c.Web.OutputName == "" {
		c.Web.OutputName = defaultWebOutputName
	}
	c.Web.APIToken = strings.TrimSpace(c.Web.APIToken)
	if c.Web.APIToken == "" {
		c.Web.APIToken = strings.TrimSpace(os.Getenv("MASHUP_API_TOKEN"))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
