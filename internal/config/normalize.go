package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLingQ()
	c.normalizeDiscovery()
	c.normalizeCover()
	if err := c.normalizeDownloader(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
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

// lookupEnv returns the first non-empty value among the named variables.
func lookupEnv(names ...string) (string, bool) {
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func (c *Config) normalizeLingQ() {
	// Environment wins over the file for credentials so a .env file can
	// rotate the token without editing config.toml.
	if value, ok := lookupEnv("LINGQ_API_KEY", "APIKey"); ok {
		c.LingQ.APIKey = value
	}
	c.LingQ.APIKey = strings.TrimSpace(c.LingQ.APIKey)
	if value, ok := lookupEnv("LINGQ_LESSON_STATUS", "status"); ok {
		c.LingQ.LessonStatus = value
	}
	c.LingQ.LessonStatus = strings.ToLower(strings.TrimSpace(c.LingQ.LessonStatus))
	if c.LingQ.LessonStatus == "" {
		c.LingQ.LessonStatus = defaultLessonStatus
	}
	c.LingQ.BaseURL = strings.TrimRight(strings.TrimSpace(c.LingQ.BaseURL), "/")
	if c.LingQ.BaseURL == "" {
		c.LingQ.BaseURL = defaultLingQBaseURL
	}
	c.LingQ.Language = strings.ToLower(strings.TrimSpace(c.LingQ.Language))
	if c.LingQ.Language == "" {
		c.LingQ.Language = defaultLingQLanguage
	}
	c.LingQ.SourceURL = strings.TrimSpace(c.LingQ.SourceURL)
	c.LingQ.UserAgent = strings.TrimSpace(c.LingQ.UserAgent)
	if c.LingQ.UserAgent == "" {
		c.LingQ.UserAgent = defaultUserAgent
	}
	if c.LingQ.RequestsPerSecond <= 0 {
		c.LingQ.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.LingQ.TimeoutSeconds <= 0 {
		c.LingQ.TimeoutSeconds = defaultLingQTimeoutSeconds
	}
}

func (c *Config) normalizeDiscovery() {
	if c.Discovery.MaxAudioMB <= 0 {
		c.Discovery.MaxAudioMB = defaultMaxAudioMB
	}
	c.Discovery.SplitSuffix = strings.TrimSpace(c.Discovery.SplitSuffix)
	if c.Discovery.SplitSuffix == "" {
		c.Discovery.SplitSuffix = defaultSplitSuffix
	}
	c.Discovery.MetadataFile = strings.TrimSpace(c.Discovery.MetadataFile)
	if c.Discovery.MetadataFile == "" {
		c.Discovery.MetadataFile = defaultMetadataFile
	}
	c.Discovery.CoverName = strings.TrimSpace(c.Discovery.CoverName)
	if c.Discovery.CoverName == "" {
		c.Discovery.CoverName = defaultCoverName
	}
}

func (c *Config) normalizeCover() {
	if c.Cover.MaxSize <= 0 {
		c.Cover.MaxSize = defaultCoverMaxSize
	}
	if c.Cover.JPEGQuality <= 0 || c.Cover.JPEGQuality > 100 {
		c.Cover.JPEGQuality = defaultCoverJPEGQuality
	}
}

func (c *Config) normalizeDownloader() error {
	var err error
	if strings.TrimSpace(c.Downloader.OutputDir) == "" {
		c.Downloader.OutputDir = defaultDownloaderOutputDir
	}
	if c.Downloader.OutputDir, err = expandPath(c.Downloader.OutputDir); err != nil {
		return fmt.Errorf("downloader.output_dir: %w", err)
	}
	c.Downloader.M4bToolPath = strings.TrimSpace(c.Downloader.M4bToolPath)
	if c.Downloader.M4bToolPath == "" {
		c.Downloader.M4bToolPath = defaultM4bToolPath
	}
	if c.Downloader.TimeoutSeconds <= 0 {
		c.Downloader.TimeoutSeconds = defaultDownloaderTimeout
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := lookupEnv("LINGQ_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
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
