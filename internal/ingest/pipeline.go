package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"lingq_upload/internal/epub"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/services"
)

// PrepareOptions configures a full pipeline run.
type PrepareOptions struct {
	Discovery DiscoveryOptions
	Overrides Overrides
	SourceURL string
	// CoverDir receives the EPUB's cover when discovery found none. Empty
	// leaves the cover inside the EPUB and only records its name on the plan.
	CoverDir string
	Logger   *slog.Logger
}

// Prepare runs discovery, metadata loading, chapter extraction and plan
// building in order. Nothing remote is touched; every validation failure is
// returned before the caller can act on the plan.
func Prepare(ctx context.Context, src Source, opts PrepareOptions) (UploadPlan, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ingest")
	ctx = services.WithSource(ctx, src.Dir)

	stageLogger := func(stage string) *slog.Logger {
		return logging.WithContext(services.WithStage(ctx, stage), logger)
	}

	discovery := opts.Discovery
	discovery.Logger = stageLogger("discovery")
	assets, err := Discover(src, discovery)
	if err != nil {
		return UploadPlan{}, err
	}
	if err := ctx.Err(); err != nil {
		return UploadPlan{}, err
	}

	meta, err := LoadMetadata(assets.MetadataPath, opts.Overrides)
	if err != nil {
		return UploadPlan{}, err
	}
	metaLogger := stageLogger("metadata")
	if meta.Level != "" && !IsKnownLevel(meta.Level) {
		logging.WarnWithContext(metaLogger, "unknown level name", "metadata_unknown_level",
			logging.String("level", meta.Level),
			logging.String(logging.FieldImpact, "collection is created at Beginner 1"),
			logging.String(logging.FieldErrorHint, "pass --level with one of the six level names"),
		)
	}
	metaLogger.Debug("metadata loaded",
		logging.String("title", meta.Title),
		logging.String("level", meta.Level),
		logging.Int("tags", len(meta.Tags)),
	)

	plan, err := readBook(ctx, assets, meta, opts.CoverDir, stageLogger("chapters"))
	if err != nil {
		return UploadPlan{}, err
	}
	plan.Collection.SourceURL = opts.SourceURL
	plan.Assets = assets

	stageLogger("plan").Info("upload plan ready",
		logging.String("title", plan.Collection.Title),
		logging.Int("lessons", len(plan.Lessons)),
		logging.Int("level_code", plan.Collection.LevelCode),
		logging.String("strategy", plan.Strategy),
	)
	return plan, nil
}

// readBook opens the EPUB for chapter extraction, plan building and the cover
// fallback. The cover is only written once the plan is valid, and the archive
// is closed on every path.
func readBook(ctx context.Context, assets Assets, meta Metadata, coverDir string, logger *slog.Logger) (plan UploadPlan, err error) {
	book, err := epub.Open(assets.EPUBPath)
	if err != nil {
		return UploadPlan{}, fmt.Errorf("open epub: %w", err)
	}
	defer func() {
		if closeErr := book.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close epub: %w", closeErr)
		}
		if err != nil {
			_ = plan.Release()
			plan = UploadPlan{}
		}
	}()

	set, err := ExtractChapters(book)
	if err != nil {
		return UploadPlan{}, err
	}
	logger.Debug("chapters extracted",
		logging.Int("chapters", set.Len()),
		logging.String("strategy", set.Strategy),
	)
	if err := ctx.Err(); err != nil {
		return UploadPlan{}, err
	}

	plan, err = BuildPlan(meta, set, assets.AudioPaths, assets.CoverPath)
	if err != nil {
		return UploadPlan{}, err
	}
	plan.Strategy = set.Strategy
	if plan.CoverPath != "" {
		return plan, nil
	}

	img, ok := book.Cover()
	if !ok {
		logger.Info("no cover image found, skipping cover upload")
		return plan, nil
	}
	plan.EmbeddedCover = img.Name()
	if coverDir == "" {
		return plan, nil
	}
	extracted, ok, extractErr := book.ExtractCover(coverDir)
	switch {
	case extractErr != nil:
		logging.WarnWithContext(logger, "cover extraction failed", "cover_extract_failed",
			logging.Error(extractErr),
			logging.String(logging.FieldImpact, "collection is uploaded without a cover"),
		)
	case ok:
		logger.Info("cover extracted from epub", logging.String("cover", extracted))
		plan.CoverPath = extracted
		plan.coverExtracted = true
	}
	return plan, nil
}
