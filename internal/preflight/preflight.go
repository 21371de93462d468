package preflight

import (
	"context"

	"lingq_upload/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the checks that apply to the command being run.
type Options struct {
	// SourceDir is checked for read access when set.
	SourceDir string
	// Remote enables the API key and LingQ reachability checks.
	Remote bool
	// Download enables the downloader output directory and tool checks.
	Download bool
}

// RunAll executes the preflight checks selected by opts.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if opts.SourceDir != "" {
		results = append(results, CheckSourceReadable("Source directory", opts.SourceDir))
	}

	if opts.Remote {
		results = append(results, CheckAPIKey(cfg.LingQ.APIKey))
		if cfg.LingQ.APIKey != "" {
			results = append(results, CheckLingQ(ctx, cfg.LingQ.BaseURL, cfg.LingQ.Language, cfg.LingQ.APIKey))
		}
	}

	if opts.Download {
		results = append(results, CheckDirectoryAccess("Download directory", cfg.Downloader.OutputDir))
		if cfg.Downloader.SplitAudio {
			results = append(results, CheckTools(cfg)...)
		}
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
