package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var validLessonStatuses = map[string]struct{}{
	"private": {},
	"shared":  {},
}

// Validate ensures the configuration is usable. The LingQ token is not
// required here so offline commands (plan, download, config) keep working;
// RequireAPIKey is checked before anything is published.
func (c *Config) Validate() error {
	if err := c.validateLingQ(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKey reports a configuration error when no LingQ token is available.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LingQ.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("lingq.api_key is required. Set LINGQ_API_KEY (or APIKey in .env) or edit %s (create with 'lingq config init')", defaultPath)
}

func (c *Config) validateLingQ() error {
	parsed, err := url.Parse(c.LingQ.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("lingq.base_url must be an absolute URL, got %q", c.LingQ.BaseURL)
	}
	if _, ok := validLessonStatuses[c.LingQ.LessonStatus]; !ok {
		return fmt.Errorf("lingq.lesson_status must be private or shared, got %q", c.LingQ.LessonStatus)
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if strings.ContainsAny(c.Discovery.MetadataFile, `/\`) {
		return errors.New("discovery.metadata_file must be a file name, not a path")
	}
	if strings.ContainsAny(c.Discovery.CoverName, `/\`) {
		return errors.New("discovery.cover_name must be a base name, not a path")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("notifications.ntfy_topic must be a full URL (e.g. https://ntfy.sh/my-topic)")
	}
	return nil
}
