package config

const (
	defaultConfigPath             = "~/.config/mashup/config.toml"
	defaultStagingDir             = "~/.local/share/mashup/downloads"
	defaultOutputDir              = "~/.local/share/mashup/outputs"
	defaultStateDir               = "~/.local/share/mashup"
	defaultLogDir                 = "~/.local/share/mashup/logs"
	defaultMinCount               = 10
	defaultMinDuration            = 20
	defaultWebMaxCount            = 50
	defaultWebMaxDuration         = 60
	defaultLockTimeoutSeconds     = 600
	defaultYtDlpBinary            = "yt-dlp"
	defaultQuerySuffix            = "songs"
	defaultDownloadFormat         = "bestaudio/best"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultSampleRate             = 44100
	defaultChannels               = 2
	defaultMP3Bitrate             = "192k"
	defaultDecodeWorkers          = 4
	defaultDecodeTimeoutSeconds   = 120
	defaultEncodeTimeoutSeconds   = 300
	defaultSMTPHost               = "smtp.gmail.com"
	defaultSMTPPort               = 465
	defaultMailSubject            = "Your Mashup File"
	defaultMailBody               = "Your mashup file is attached."
	defaultArchiveName            = "mashup.mp3"
	defaultAttachmentName         = "mashup.zip"
	defaultDeliveryTimeoutSeconds = 30
	defaultWebBind                = "0.0.0.0:10000"
	defaultMaxUploadMB            = 200
	defaultWebOutputName          = "mashup.mp3"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			OutputDir:  defaultOutputDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Limits: Limits{
			MinCount:       defaultMinCount,
			MinDuration:    defaultMinDuration,
			WebMaxCount:    defaultWebMaxCount,
			WebMaxDuration: defaultWebMaxDuration,
		},
		Workspace: Workspace{
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Acquisition: Acquisition{
			Binary:      defaultYtDlpBinary,
			QuerySuffix: defaultQuerySuffix,
			Format:      defaultDownloadFormat,
		},
		Assembly: Assembly{
			FFmpegBinary:         defaultFFmpegBinary,
			FFprobeBinary:        defaultFFprobeBinary,
			SampleRate:           defaultSampleRate,
			Channels:             defaultChannels,
			MP3Bitrate:           defaultMP3Bitrate,
			DecodeWorkers:        defaultDecodeWorkers,
			DecodeTimeoutSeconds: defaultDecodeTimeoutSeconds,
			EncodeTimeoutSeconds: defaultEncodeTimeoutSeconds,
		},
		Delivery: Delivery{
			SMTPHost:       defaultSMTPHost,
			SMTPPort:       defaultSMTPPort,
			Subject:        defaultMailSubject,
			Body:           defaultMailBody,
			ArchiveName:    defaultArchiveName,
			AttachmentName: defaultAttachmentName,
			TimeoutSeconds: defaultDeliveryTimeoutSeconds,
		},
		Web: Web{
			Bind:        defaultWebBind,
			MaxUploadMB: defaultMaxUploadMB,
			OutputName:  defaultWebOutputName,
			IsolateRuns: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
