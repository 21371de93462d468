package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lingq_upload/internal/config"
	"lingq_upload/internal/downloader"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/notifications"
)

func newEnglishEReader(cfg *config.Config, skipUnzip bool, logger *slog.Logger) *downloader.EnglishEReaderProvider {
	timeout := time.Duration(cfg.Downloader.TimeoutSeconds) * time.Second
	return downloader.NewEnglishEReaderProvider(downloader.EnglishEReaderOptions{
		BaseURL:    cfg.LingQ.SourceURL,
		SkipUnzip:  skipUnzip,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	})
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var outDir string
	var skipUnzip bool
	var noSplit bool

	cmd := &cobra.Command{
		Use:   "download <slug|url>",
		Short: "Download a book from english-e-reader.net into an upload-ready directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root := cfg.Downloader.OutputDir
			if strings.TrimSpace(outDir) != "" {
				root, err = config.ExpandPath(outDir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}
			if !cmd.Flags().Changed("skip-unzip") {
				skipUnzip = cfg.Downloader.SkipUnzip
			}

			manager := downloader.NewManager(root, logger)
			manager.RegisterProvider(newEnglishEReader(cfg, skipUnzip, logger))

			result, err := manager.Download(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.SplitDir == "" && cfg.Downloader.SplitAudio && !noSplit {
				processor := downloader.NewAudioProcessor(cfg.Downloader.M4bToolPath, logger)
				processed, err := processor.Process(cmd.Context(), result.OutputDir)
				if err != nil {
					return err
				}
				if processed.Processed {
					result.SplitDir = processed.SplitFilesDir
				}
			}

			fmt.Fprintf(out, "Downloaded %q to %s (%d files)\n", result.Title, result.OutputDir, len(result.Files))
			for _, skipped := range result.Skipped {
				fmt.Fprintf(out, "Skipped format: %s\n", skipped)
			}
			if result.SplitDir != "" {
				fmt.Fprintf(out, "Chapter audio: %s\n", result.SplitDir)
			}
			fmt.Fprintf(out, "Next: lingq upload %s\n", result.OutputDir)

			notifier := notifications.NewService(cfg)
			if err := notifier.Publish(cmd.Context(), notifications.EventDownloadCompleted, notifications.Payload{
				"title":     result.Title,
				"outputDir": result.OutputDir,
			}); err != nil {
				logger.Debug("download notification failed", logging.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory that receives the book folder")
	cmd.Flags().BoolVar(&skipUnzip, "skip-unzip", false, "Keep the chapter archive zipped")
	cmd.Flags().BoolVar(&noSplit, "no-split", false, "Do not split a single-file audiobook with m4b-tool")
	return cmd
}

func newMetaCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "meta <slug|url>",
		Short: "Print the metadata scraped from an english-e-reader.net book page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			meta, err := newEnglishEReader(cfg, true, logger).FetchMetadata(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(meta)
			}
			rows := [][]string{
				{"Title", meta.Title},
				{"Author", meta.Author},
				{"Level", meta.Level},
				{"Tags", strings.Join(meta.Tags, ", ")},
				{"Description", meta.Description},
			}
			fmt.Fprintln(out, renderTable(columns("Field", "Value"), rows, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print metadata.json content instead of a table")
	return cmd
}
