package config

const (
	defaultConfigPath           = "~/.config/lingq/config.toml"
	defaultStateDir             = "~/.local/share/lingq"
	defaultLogDir               = "~/.local/share/lingq/logs"
	defaultLingQBaseURL         = "https://www.lingq.com"
	defaultLingQLanguage        = "en"
	defaultLessonStatus         = "private"
	defaultSourceURL            = "https://english-e-reader.net"
	defaultUserAgent            = "lingq-upload/0.1.0"
	defaultRequestsPerSecond    = 2.0
	defaultLingQTimeoutSeconds  = 120
	defaultMaxAudioMB           = 100
	defaultSplitSuffix          = "_splitted"
	defaultMetadataFile         = "metadata.json"
	defaultCoverName            = "cover"
	defaultCoverMaxSize         = 1000
	defaultCoverJPEGQuality     = 90
	defaultDownloaderOutputDir  = "."
	defaultM4bToolPath          = "m4b-tool"
	defaultDownloaderTimeout    = 300
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		LingQ: LingQ{
			BaseURL:           defaultLingQBaseURL,
			Language:          defaultLingQLanguage,
			LessonStatus:      defaultLessonStatus,
			SourceURL:         defaultSourceURL,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultRequestsPerSecond,
			TimeoutSeconds:    defaultLingQTimeoutSeconds,
		},
		Discovery: Discovery{
			MaxAudioMB:   defaultMaxAudioMB,
			SplitSuffix:  defaultSplitSuffix,
			MetadataFile: defaultMetadataFile,
			CoverName:    defaultCoverName,
		},
		Cover: Cover{
			MaxSize:     defaultCoverMaxSize,
			JPEGQuality: defaultCoverJPEGQuality,
		},
		Downloader: Downloader{
			OutputDir:      defaultDownloaderOutputDir,
			SplitAudio:     true,
			M4bToolPath:    defaultM4bToolPath,
			TimeoutSeconds: defaultDownloaderTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Uploads:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
