package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"lingq_upload/internal/logging"
	"lingq_upload/internal/services"
)

// Provider represents a site-specific downloader implementation.
type Provider interface {
	Name() string
	Match(input string) bool
	Download(ctx context.Context, input string, outputRoot string) (*Result, error)
}

// Result captures the output of a download run.
type Result struct {
	Provider     string
	Slug         string
	Title        string
	OutputDir    string
	Files        []string
	MetadataPath string
	SplitDir     string
	Skipped      []string
}

// Manager routes downloads to the first provider that claims the input.
type Manager struct {
	outputRoot string
	providers  []Provider
	logger     *slog.Logger
}

// NewManager creates a Manager writing below outputRoot.
func NewManager(outputRoot string, logger *slog.Logger) *Manager {
	return &Manager{
		outputRoot: outputRoot,
		logger:     logging.NewComponentLogger(logger, "downloader"),
	}
}

// RegisterProvider registers providers in priority order.
func (m *Manager) RegisterProvider(provider Provider) {
	m.providers = append(m.providers, provider)
}

// Download dispatches input to the first matching provider. Relative output
// directories are resolved against the manager's root.
func (m *Manager) Download(ctx context.Context, input string) (*Result, error) {
	for _, provider := range m.providers {
		if !provider.Match(input) {
			continue
		}
		m.logger.Debug("provider selected",
			logging.String("provider", provider.Name()),
			logging.String("input", input),
		)
		result, err := provider.Download(ctx, input, m.outputRoot)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(result.OutputDir) {
			result.OutputDir = filepath.Join(m.outputRoot, result.OutputDir)
		}
		m.logger.Info("download completed",
			logging.String(logging.FieldEventType, "download_complete"),
			logging.String("provider", result.Provider),
			logging.String("output_dir", result.OutputDir),
			logging.Int("files", len(result.Files)),
		)
		return result, nil
	}
	return nil, services.Wrap(services.ErrValidation, "download", "route input", fmt.Sprintf("no provider can handle input %q", input), nil)
}
