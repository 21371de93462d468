package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lingq_upload/internal/audio"
	"lingq_upload/internal/history"
	"lingq_upload/internal/ingest"
	"lingq_upload/internal/lingq"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/notifications"
	"lingq_upload/internal/services"
)

// PodcastTag is the only tag on podcast collections.
const PodcastTag = "Podcast"

// PodcastLevel is the level assigned to podcast collections.
const PodcastLevel = ingest.LevelIntermediate2

// Episode is one audio file imported as a transcribed lesson.
type Episode struct {
	Title     string
	AudioPath string
}

// PodcastPlan describes a podcast collection import.
type PodcastPlan struct {
	Dir         string
	Title       string
	Description string
	Episodes    []Episode
}

// PodcastReport summarises a podcast import.
type PodcastReport struct {
	RunID        string
	CollectionID int
	LessonIDs    []int
}

// PlanPodcast lists the MP3 files at path, a directory or a single file, as
// episodes. Titles come from the ID3 title frame, falling back to the file
// name with dashes turned into spaces.
func PlanPodcast(path, title, description string) (PodcastPlan, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return PodcastPlan{}, services.Wrap(services.ErrValidation, "podcast", "plan", "title is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return PodcastPlan{}, &ingest.MissingAssetError{Asset: ingest.AssetAudio, Path: path, Detail: "not found"}
	}

	files := []string{path}
	dir := path
	if info.IsDir() {
		files, err = ingest.ListAudio(path)
		if err != nil {
			return PodcastPlan{}, err
		}
	} else {
		dir = filepath.Dir(path)
	}
	if len(files) == 0 {
		return PodcastPlan{}, &ingest.MissingAssetError{Asset: ingest.AssetAudio, Path: path, Detail: "no .mp3 files"}
	}

	plan := PodcastPlan{Dir: dir, Title: title, Description: strings.TrimSpace(description)}
	for _, file := range files {
		fallback := strings.ReplaceAll(ingest.LessonTitle(file), "-", " ")
		plan.Episodes = append(plan.Episodes, Episode{
			Title:     audio.TitleOrFallback(file, fallback),
			AudioPath: file,
		})
	}
	return plan, nil
}

// ImportPodcast creates a hidden-lesson podcast collection and imports each
// episode in order. LingQ transcribes the audio server side.
func (p *Publisher) ImportPodcast(ctx context.Context, plan PodcastPlan) (PodcastReport, error) {
	if len(plan.Episodes) == 0 {
		return PodcastReport{}, services.Wrap(services.ErrValidation, "podcast", "check plan", "plan has no episodes", nil)
	}

	run, err := p.journal.Begin(ctx, history.KindPodcast, plan.Dir, plan.Title, len(plan.Episodes))
	if err != nil {
		return PodcastReport{}, fmt.Errorf("journal podcast run: %w", err)
	}
	ctx = services.WithRunID(ctx, run.ID)
	ctx = services.WithSource(ctx, plan.Dir)
	logger := logging.WithContext(ctx, p.logger)
	report := PodcastReport{RunID: run.ID}

	run.Status = history.StatusUploading
	p.journalUpdate(ctx, logger, run)

	err = p.importEpisodes(ctx, plan, run, &report)
	if err != nil {
		run.Status = services.FailureStatus(err)
		if run.CollectionID != 0 {
			err = &PartialUploadError{
				CollectionID:    run.CollectionID,
				LessonsUploaded: run.LessonsUploaded,
				LessonsTotal:    run.LessonsTotal,
				Err:             err,
			}
		}
		run.ErrorMessage = err.Error()
		p.journalUpdate(ctx, logger, run)
		logging.ErrorWithContext(logger, "podcast import failed", "podcast_failed",
			logging.String("failed_stage", services.StageOf(err)),
			logging.Int(logging.FieldCollectionID, run.CollectionID),
			logging.Error(err),
		)
		p.notify(ctx, logger, notifications.EventUploadFailed, notifications.Payload{
			"title":        plan.Title,
			"collectionID": run.CollectionID,
			"error":        err,
		})
		return report, err
	}

	run.Status = history.StatusCompleted
	p.journalUpdate(ctx, logger, run)
	logger.Info("podcast imported",
		logging.String(logging.FieldEventType, "podcast_complete"),
		logging.Int(logging.FieldCollectionID, report.CollectionID),
		logging.Int("lessons", len(report.LessonIDs)),
	)
	p.notify(ctx, logger, notifications.EventUploadCompleted, notifications.Payload{
		"title":        plan.Title,
		"collectionID": report.CollectionID,
		"lessons":      len(report.LessonIDs),
	})
	return report, nil
}

func (p *Publisher) importEpisodes(ctx context.Context, plan PodcastPlan, run *history.Run, report *PodcastReport) error {
	created, err := p.client.CreateCollection(services.WithStage(ctx, stageCollection), lingq.CollectionRequest{
		Title:       plan.Title,
		Description: plan.Description,
		Tags:        []string{PodcastTag},
		LevelCode:   ingest.LevelCode(PodcastLevel),
	})
	if err != nil {
		return services.Wrap(services.ErrRemote, stageCollection, "create collection", plan.Title, err)
	}
	run.CollectionID = created.ID
	report.CollectionID = created.ID
	p.journalUpdate(ctx, p.logger, run)

	lessonCtx := services.WithStage(ctx, stageLessons)
	logger := logging.WithContext(lessonCtx, p.logger)
	for i, episode := range plan.Episodes {
		if err := lessonCtx.Err(); err != nil {
			return services.Wrap(services.ErrTransient, stageLessons, "import episodes", "cancelled", err)
		}
		lesson, err := p.client.ImportLesson(lessonCtx, lingq.ImportRequest{
			CollectionID: created.ID,
			Title:        episode.Title,
			AudioPath:    episode.AudioPath,
			Hidden:       true,
		})
		if err != nil {
			return services.Wrap(services.ErrRemote, stageLessons, "import lesson", fmt.Sprintf("#%d %s", i+1, episode.Title), err)
		}
		report.LessonIDs = append(report.LessonIDs, lesson.ID)
		run.LessonsUploaded++
		p.journalUpdate(ctx, logger, run)
		logger.Info("episode imported",
			logging.Int(logging.FieldLessonID, lesson.ID),
			logging.String("title", episode.Title),
		)
	}
	return nil
}
