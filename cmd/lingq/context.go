package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lingq_upload/internal/config"
	"lingq_upload/internal/cover"
	"lingq_upload/internal/history"
	"lingq_upload/internal/lingq"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/notifications"
	"lingq_upload/internal/publish"
	"lingq_upload/internal/services"
)

type globalFlags struct {
	config    string
	envFile   string
	verbose   bool
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.config)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil {
			if format := strings.TrimSpace(c.flags.logFormat); format != "" {
				cfg.Logging.Format = format
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		verbose := c.flags != nil && c.flags.verbose
		logger, err := logging.NewFromConfig(cfg, verbose)
		if err != nil {
			c.loggerErr = fmt.Errorf("build logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) lingqClient(cfg *config.Config) (*lingq.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "lingq client", "", err)
	}
	timeout := time.Duration(cfg.LingQ.TimeoutSeconds) * time.Second
	return lingq.New(lingq.Options{
		BaseURL:           cfg.LingQ.BaseURL,
		Token:             cfg.LingQ.APIKey,
		Language:          cfg.LingQ.Language,
		UserAgent:         cfg.LingQ.UserAgent,
		RequestsPerSecond: cfg.LingQ.RequestsPerSecond,
		HTTPClient:        &http.Client{Timeout: timeout},
	})
}

// withPublisher builds the client, journal and publisher for one command and
// closes the journal when fn returns.
func (c *commandContext) withPublisher(fn func(*config.Config, *publish.Publisher, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	client, err := c.lingqClient(cfg)
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open upload history: %w", err)
	}
	defer store.Close()

	publisher, err := publish.New(publish.Options{
		Client:       client,
		Journal:      store,
		Notifier:     notifications.NewService(cfg),
		Logger:       logger,
		LessonStatus: cfg.LingQ.LessonStatus,
		Cover: cover.Options{
			MaxSize: cfg.Cover.MaxSize,
			Quality: cfg.Cover.JPEGQuality,
		},
		WorkDir: cfg.Paths.StateDir,
	})
	if err != nil {
		return err
	}
	return fn(cfg, publisher, logger)
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open upload history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
