package publish

import (
	"context"
	"fmt"

	"lingq_upload/internal/ingest"
	"lingq_upload/internal/lingq"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/services"
)

// UpdateMetadata applies tags, the books shelf, level and shared status to
// every lesson already in a collection.
func (p *Publisher) UpdateMetadata(ctx context.Context, collectionID int, tags []string, level string) error {
	ctx = services.WithStage(ctx, stageMetadata)
	ids, err := p.lessonIDs(ctx, collectionID)
	if err != nil {
		return err
	}
	code := 0
	if level != "" {
		code = ingest.LevelCode(level)
	}
	return p.applyLessonMetadata(ctx, collectionID, ids, tags, code)
}

// GenerateTimestamps requests audio alignment for every lesson in a
// collection. Per-lesson failures are logged and counted, never retried.
func (p *Publisher) GenerateTimestamps(ctx context.Context, collectionID int) (TimestampReport, error) {
	ctx = services.WithStage(ctx, stageTimestamps)
	ids, err := p.lessonIDs(ctx, collectionID)
	if err != nil {
		return TimestampReport{}, err
	}
	return p.requestTimestamps(ctx, ids), nil
}

func (p *Publisher) lessonIDs(ctx context.Context, collectionID int) ([]int, error) {
	lessons, err := p.client.ListLessons(ctx, collectionID)
	if err != nil {
		return nil, services.Wrap(services.ErrRemote, "", "list lessons", fmt.Sprintf("collection %d", collectionID), err)
	}
	if len(lessons) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "", "list lessons", fmt.Sprintf("collection %d", collectionID), ErrEmptyCollection)
	}
	ids := make([]int, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}
	return ids, nil
}

// applyLessonMetadata sends the three bulk updates in order: tags with the
// books shelf, level, then shared status. A zero level code skips the level
// update.
func (p *Publisher) applyLessonMetadata(ctx context.Context, collectionID int, ids []int, tags []string, levelCode int) error {
	updates := []struct {
		op     string
		update lingq.BulkLessonUpdate
	}{
		{op: "add tags", update: lingq.BulkLessonUpdate{IDs: ids, AddShelves: []string{BooksShelf}, AddTags: tags}},
		{op: "set level", update: lingq.BulkLessonUpdate{IDs: ids, Level: levelCode}},
		{op: "share lessons", update: lingq.BulkLessonUpdate{IDs: ids, Status: SharedStatus}},
	}
	logger := p.contextLogger(ctx)
	for _, u := range updates {
		if u.op == "set level" && levelCode == 0 {
			continue
		}
		if err := p.client.UpdateLessons(ctx, collectionID, u.update); err != nil {
			return services.Wrap(services.ErrRemote, stageMetadata, u.op, fmt.Sprintf("collection %d", collectionID), err)
		}
		logger.Debug("lessons updated",
			logging.Int(logging.FieldCollectionID, collectionID),
			logging.String("update", u.op),
			logging.Int("lessons", len(ids)),
		)
	}
	logger.Info("lesson metadata applied",
		logging.Int(logging.FieldCollectionID, collectionID),
		logging.Int("lessons", len(ids)),
	)
	return nil
}

func (p *Publisher) requestTimestamps(ctx context.Context, ids []int) TimestampReport {
	logger := p.contextLogger(ctx)
	var report TimestampReport
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Requested++
		if err := p.client.GenerateTimestamps(ctx, id); err != nil {
			report.Failed++
			logging.WarnWithContext(logger, "timestamp generation failed", "timestamps_failed",
				logging.Int(logging.FieldLessonID, id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "lesson audio is not aligned with its text"),
				logging.String(logging.FieldErrorHint, "rerun lingq timestamps <collection-id>"),
			)
			continue
		}
		logger.Debug("timestamps requested", logging.Int(logging.FieldLessonID, id))
	}
	logger.Info("timestamp generation requested",
		logging.Int("requested", report.Requested),
		logging.Int("failed", report.Failed),
	)
	return report
}
