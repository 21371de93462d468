package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"lingq_upload/internal/cover"
	"lingq_upload/internal/history"
	"lingq_upload/internal/ingest"
	"lingq_upload/internal/lingq"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/notifications"
	"lingq_upload/internal/services"
)

const (
	stageCollection = "collection"
	stageCover      = "cover"
	stageLessons    = "lessons"
	stageMetadata   = "metadata"
	stageTimestamps = "timestamps"
)

// Publish uploads plan as a new collection. Lessons are created strictly in
// plan order. Any failure after the collection exists is returned as a
// *PartialUploadError.
func (p *Publisher) Publish(ctx context.Context, plan ingest.UploadPlan) (Report, error) {
	if len(plan.Lessons) == 0 {
		return Report{}, services.Wrap(services.ErrValidation, "publish", "check plan", "plan has no lessons", nil)
	}

	run, err := p.journal.Begin(ctx, history.KindBook, plan.Assets.Dir, plan.Collection.Title, len(plan.Lessons))
	if err != nil {
		return Report{}, fmt.Errorf("journal upload run: %w", err)
	}
	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithSource(ctx, plan.Assets.Dir)
	logger := logging.WithContext(ctx, p.logger)

	report := Report{RunID: run.ID}
	run.Status = history.StatusUploading
	p.journalUpdate(ctx, logger, run)

	logger.Info("upload started",
		logging.String(logging.FieldEventType, "upload_start"),
		logging.String("title", plan.Collection.Title),
		logging.Int("lessons", len(plan.Lessons)),
	)

	err = p.publishBook(ctx, plan, run, &report)
	if err != nil {
		run.Status = services.FailureStatus(err)
		run.ErrorMessage = err.Error()
		if run.CollectionID != 0 {
			err = &PartialUploadError{
				CollectionID:    run.CollectionID,
				LessonsUploaded: run.LessonsUploaded,
				LessonsTotal:    run.LessonsTotal,
				Err:             err,
			}
			run.ErrorMessage = err.Error()
		}
		p.journalUpdate(ctx, logger, run)
		logging.ErrorWithContext(logger, "upload failed", "upload_failed",
			logging.String("failed_stage", services.StageOf(err)),
			logging.Int(logging.FieldCollectionID, run.CollectionID),
			logging.Int("lessons_uploaded", run.LessonsUploaded),
			logging.Error(err),
		)
		p.notify(ctx, logger, notifications.EventUploadFailed, notifications.Payload{
			"title":        plan.Collection.Title,
			"collectionID": run.CollectionID,
			"error":        err,
		})
		report.CollectionID = run.CollectionID
		return report, err
	}

	run.Status = history.StatusCompleted
	run.TimestampsFailed = report.TimestampsFailed
	p.journalUpdate(ctx, logger, run)

	logger.Info("upload completed",
		logging.String(logging.FieldEventType, "upload_complete"),
		logging.Int(logging.FieldCollectionID, report.CollectionID),
		logging.Int("lessons", len(report.LessonIDs)),
		logging.Int("timestamps_failed", report.TimestampsFailed),
	)
	p.notify(ctx, logger, notifications.EventUploadCompleted, notifications.Payload{
		"title":        plan.Collection.Title,
		"collectionID": report.CollectionID,
		"lessons":      len(report.LessonIDs),
	})
	return report, nil
}

func (p *Publisher) publishBook(ctx context.Context, plan ingest.UploadPlan, run *history.Run, report *Report) error {
	collectionCtx := services.WithStage(ctx, stageCollection)
	created, err := p.client.CreateCollection(collectionCtx, lingq.CollectionRequest{
		Title:       plan.Collection.Title,
		Description: plan.Collection.Description,
		Tags:        plan.Collection.Tags,
		LevelCode:   plan.Collection.LevelCode,
		SourceURL:   plan.Collection.SourceURL,
	})
	if err != nil {
		return services.Wrap(services.ErrRemote, stageCollection, "create collection", plan.Collection.Title, err)
	}
	run.CollectionID = created.ID
	report.CollectionID = created.ID
	p.journalUpdate(ctx, p.logger, run)
	logging.WithContext(collectionCtx, p.logger).Info("collection created",
		logging.Int(logging.FieldCollectionID, created.ID),
	)

	coverPath, cleanup := p.prepareCover(services.WithStage(ctx, stageCover), plan.CoverPath)
	defer cleanup()
	if coverPath != "" {
		if err := p.client.UploadCover(ctx, created.ID, coverPath); err != nil {
			return services.Wrap(services.ErrRemote, stageCover, "upload cover", "", err)
		}
		report.CoverUploaded = true
	}

	lessonCtx := services.WithStage(ctx, stageLessons)
	lessonLogger := logging.WithContext(lessonCtx, p.logger)
	for _, lesson := range plan.Lessons {
		if err := lessonCtx.Err(); err != nil {
			return services.Wrap(services.ErrTransient, stageLessons, "upload lessons", "cancelled", err)
		}
		id, err := p.uploadLesson(lessonCtx, created.ID, lesson, coverPath)
		if err != nil {
			return err
		}
		report.LessonIDs = append(report.LessonIDs, id)
		run.LessonsUploaded++
		p.journalUpdate(ctx, lessonLogger, run)
		lessonLogger.Info("lesson uploaded",
			logging.Int(logging.FieldLessonID, id),
			logging.Int("position", lesson.Position),
			logging.String("title", lesson.Title),
		)
	}

	metadataCtx := services.WithStage(ctx, stageMetadata)
	if err := p.applyLessonMetadata(metadataCtx, created.ID, report.LessonIDs, plan.Collection.Tags, plan.Collection.LevelCode); err != nil {
		return err
	}

	ts := p.requestTimestamps(services.WithStage(ctx, stageTimestamps), report.LessonIDs)
	report.TimestampsRequested = ts.Requested
	report.TimestampsFailed = ts.Failed
	return nil
}

func (p *Publisher) uploadLesson(ctx context.Context, collectionID int, lesson ingest.Lesson, coverPath string) (int, error) {
	created, err := p.client.CreateLesson(ctx, lingq.LessonRequest{
		CollectionID: collectionID,
		Title:        lesson.Title,
		Text:         lesson.Text,
		Status:       p.lessonStatus,
	})
	if err != nil {
		return 0, services.Wrap(services.ErrRemote, stageLessons, "create lesson", lessonLabel(lesson), err)
	}
	if err := p.client.AttachAudio(ctx, created.ID, lesson.AudioPath, coverPath); err != nil {
		return 0, services.Wrap(services.ErrRemote, stageLessons, "attach audio", fmt.Sprintf("%s (lesson %d)", lessonLabel(lesson), created.ID), err)
	}
	return created.ID, nil
}

// prepareCover returns the path to upload and a cleanup func for any
// resized copy. A cover that cannot be resized is uploaded as found.
func (p *Publisher) prepareCover(ctx context.Context, src string) (string, func()) {
	noop := func() {}
	if src == "" {
		return "", noop
	}
	logger := logging.WithContext(ctx, p.logger)
	path, changed, err := cover.Normalize(src, p.workDir, p.cover)
	if err != nil {
		logging.WarnWithContext(logger, "cover resize failed", "cover_resize_failed",
			logging.String("cover", src),
			logging.Error(err),
			logging.String(logging.FieldImpact, "original cover uploaded as found"),
		)
		return src, noop
	}
	if !changed {
		return src, noop
	}
	logger.Debug("cover resized", logging.String("cover", src), logging.String("resized", path))
	return path, func() { _ = os.Remove(path) }
}

func lessonLabel(lesson ingest.Lesson) string {
	return fmt.Sprintf("#%d %s", lesson.Position, lesson.Title)
}

func (p *Publisher) contextLogger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, p.logger)
}
