package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"lingq_upload/internal/audio"
	"lingq_upload/internal/config"
	"lingq_upload/internal/ingest"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/preflight"
	"lingq_upload/internal/publish"
)

type sourceFlags struct {
	epub     string
	audioDir string
	title    string
	level    string
	tags     string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.epub, "epub", "", "EPUB file to use instead of searching the directory")
	cmd.Flags().StringVar(&f.audioDir, "audio-dir", "", "Directory holding the chapter MP3 files")
	cmd.Flags().StringVar(&f.title, "title", "", "Collection title override")
	cmd.Flags().StringVar(&f.level, "level", "", "Collection level override (e.g. \"Intermediate 1\")")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Comma-separated tag list replacing the metadata tags")
}

func (f *sourceFlags) overrides(cmd *cobra.Command) (ingest.Overrides, error) {
	var ov ingest.Overrides
	if cmd.Flags().Changed("title") {
		ov.Title = &f.title
	}
	if cmd.Flags().Changed("level") {
		if err := validateLevel(f.level); err != nil {
			return ingest.Overrides{}, err
		}
		ov.Level = &f.level
	}
	if cmd.Flags().Changed("tags") {
		ov.Tags = &f.tags
	}
	return ov, nil
}

func (f *sourceFlags) source(dir string) (ingest.Source, error) {
	src := ingest.Source{Dir: dir}
	if strings.TrimSpace(f.epub) != "" {
		path, err := config.ExpandPath(f.epub)
		if err != nil {
			return ingest.Source{}, fmt.Errorf("resolve epub path: %w", err)
		}
		src.EPUBPath = path
	}
	if strings.TrimSpace(f.audioDir) != "" {
		path, err := config.ExpandPath(f.audioDir)
		if err != nil {
			return ingest.Source{}, fmt.Errorf("resolve audio directory: %w", err)
		}
		src.AudioDir = path
	}
	return src, nil
}

// prepareOptions builds pipeline options. Only runs that go on to publish
// extract an embedded cover; it lands in the state directory, never beside
// the book.
func prepareOptions(cfg *config.Config, ov ingest.Overrides, extractCover bool, logger *slog.Logger) ingest.PrepareOptions {
	opts := ingest.PrepareOptions{
		Discovery: ingest.DiscoveryOptions{
			MaxAudioBytes: cfg.MaxAudioBytes(),
			SplitSuffix:   cfg.Discovery.SplitSuffix,
			MetadataFile:  cfg.Discovery.MetadataFile,
			CoverName:     cfg.Discovery.CoverName,
		},
		Overrides: ov,
		SourceURL: cfg.LingQ.SourceURL,
		Logger:    logger,
	}
	if extractCover {
		opts.CoverDir = filepath.Join(cfg.Paths.StateDir, "covers")
	}
	return opts
}

// buildPlan runs the offline half of the pipeline for the command's source
// directory.
func buildPlan(cmd *cobra.Command, ctx *commandContext, flags *sourceFlags, arg string, extractCover bool) (ingest.UploadPlan, error) {
	ov, err := flags.overrides(cmd)
	if err != nil {
		return ingest.UploadPlan{}, err
	}
	dir, err := resolveSourceDir(arg)
	if err != nil {
		return ingest.UploadPlan{}, err
	}
	src, err := flags.source(dir)
	if err != nil {
		return ingest.UploadPlan{}, err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return ingest.UploadPlan{}, err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return ingest.UploadPlan{}, err
	}
	return ingest.Prepare(cmd.Context(), src, prepareOptions(cfg, ov, extractCover, logger))
}

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "upload <dir>",
		Short: "Validate a book directory and publish it as a LingQ collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, ctx, &flags, args[0], !dryRun)
			if err != nil {
				return err
			}
			defer func() {
				if err := plan.Release(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}
			}()
			out := cmd.OutOrStdout()
			if dryRun {
				printPlan(out, plan)
				fmt.Fprintln(out, "Dry run: nothing was uploaded")
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := runPreflight(cmd.Context(), cfg, plan.Assets.Dir); err != nil {
				return err
			}
			lock, err := acquireSourceLock(cfg, plan.Assets.Dir)
			if err != nil {
				return err
			}
			defer lock.Release()

			return ctx.withPublisher(func(_ *config.Config, publisher *publish.Publisher, logger *slog.Logger) error {
				report, err := publisher.Publish(cmd.Context(), plan)
				if err != nil {
					if id, ok := publish.CollectionID(err); ok {
						logger.Debug("upload left remote state", logging.Int(logging.FieldCollectionID, id))
					}
					return err
				}
				fmt.Fprintf(out, "Uploaded %q as collection %d (%d lessons)\n",
					plan.Collection.Title, report.CollectionID, len(report.LessonIDs))
				if !report.CoverUploaded && plan.CoverPath != "" {
					fmt.Fprintln(out, "Cover upload skipped")
				}
				if report.TimestampsFailed > 0 {
					fmt.Fprintf(out, "Timestamp generation failed for %d of %d lessons; rerun `lingq timestamps %d`\n",
						report.TimestampsFailed, report.TimestampsRequested, report.CollectionID)
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build and print the plan without uploading")
	return cmd
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "plan <dir>",
		Short: "Print the upload plan for a book directory without touching LingQ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := buildPlan(cmd, ctx, &flags, args[0], false)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), plan)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func runPreflight(ctx context.Context, cfg *config.Config, sourceDir string) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg, preflight.Options{
		SourceDir: sourceDir,
		Remote:    true,
	}))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return errors.New("preflight failed: " + strings.Join(parts, "; "))
}

func printPlan(out io.Writer, plan ingest.UploadPlan) {
	colorize := shouldColorize(out)
	c := plan.Collection

	level := c.Level
	if level == "" {
		level = "(none)"
	}
	coverLabel := "(none)"
	switch {
	case plan.CoverPath != "":
		coverLabel = filepath.Base(plan.CoverPath)
	case plan.EmbeddedCover != "":
		coverLabel = fmt.Sprintf("available in EPUB (%s)", plan.EmbeddedCover)
	}

	fmt.Fprintf(out, "Title:       %s\n", highlight(c.Title, colorize, text.Bold))
	if c.Author != "" {
		fmt.Fprintf(out, "Author:      %s\n", c.Author)
	}
	fmt.Fprintf(out, "Level:       %s (code %d)\n", level, c.LevelCode)
	fmt.Fprintf(out, "Tags:        %s\n", strings.Join(c.Tags, ", "))
	fmt.Fprintf(out, "Cover:       %s\n", coverLabel)
	fmt.Fprintf(out, "EPUB:        %s\n", plan.Assets.EPUBPath)
	fmt.Fprintf(out, "Audio:       %s\n", plan.Assets.AudioDir)
	for _, skipped := range plan.Assets.Skipped {
		fmt.Fprintf(out, "Skipped:     %s (%s)\n", filepath.Base(skipped.Path), skipped.Reason)
	}
	for _, note := range plan.Assets.Notes {
		fmt.Fprintf(out, "Note:        %s\n", highlight(note, colorize, text.FgYellow))
	}

	rows := make([][]string, 0, len(plan.Lessons))
	for _, lesson := range plan.Lessons {
		tagTitle, err := audio.ReadTitle(lesson.AudioPath)
		if err != nil {
			tagTitle = ""
		}
		rows = append(rows, []string{
			strconv.Itoa(lesson.Position),
			lesson.Title,
			filepath.Base(lesson.AudioPath),
			tagTitle,
			strconv.Itoa(len([]rune(lesson.Text))),
		})
	}
	fmt.Fprintln(out, renderTable(
		numeric(columns("#", "Lesson", "Audio", "ID3 Title", "Chars"), "#", "Chars"),
		rows,
		colorize,
	))
}
