package publish

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lingq_upload/internal/cover"
	"lingq_upload/internal/history"
	"lingq_upload/internal/lingq"
	"lingq_upload/internal/logging"
	"lingq_upload/internal/notifications"
)

// BooksShelf is the LingQ shelf every book lesson is added to.
const BooksShelf = "books"

// SharedStatus is applied to every lesson once the collection is complete.
const SharedStatus = "shared"

// DefaultLessonStatus is used when lessons are created.
const DefaultLessonStatus = "private"

// Client is the LingQ surface the publisher depends on. *lingq.Client
// satisfies it.
type Client interface {
	CreateCollection(ctx context.Context, req lingq.CollectionRequest) (lingq.Created, error)
	UploadCover(ctx context.Context, collectionID int, imagePath string) error
	CreateLesson(ctx context.Context, req lingq.LessonRequest) (lingq.Created, error)
	AttachAudio(ctx context.Context, lessonID int, audioPath, coverPath string) error
	ListLessons(ctx context.Context, collectionID int) ([]lingq.LessonSummary, error)
	UpdateLessons(ctx context.Context, collectionID int, update lingq.BulkLessonUpdate) error
	GenerateTimestamps(ctx context.Context, lessonID int) error
	ImportLesson(ctx context.Context, req lingq.ImportRequest) (lingq.Created, error)
}

// Journal records upload progress. *history.Store satisfies it.
type Journal interface {
	Begin(ctx context.Context, kind history.Kind, sourceDir, title string, lessonsTotal int) (*history.Run, error)
	Update(ctx context.Context, run *history.Run) error
}

// Options configures a Publisher.
type Options struct {
	Client   Client
	Journal  Journal
	Notifier notifications.Service
	Logger   *slog.Logger

	// LessonStatus is sent when each lesson is created.
	LessonStatus string
	// Cover bounds the cover image before upload.
	Cover cover.Options
	// WorkDir receives resized covers. Defaults to the system temp dir.
	WorkDir string
}

// Publisher uploads plans to LingQ one call at a time.
type Publisher struct {
	client       Client
	journal      Journal
	notifier     notifications.Service
	logger       *slog.Logger
	lessonStatus string
	cover        cover.Options
	workDir      string
}

// Report summarises a completed upload.
type Report struct {
	RunID               string
	CollectionID        int
	LessonIDs           []int
	CoverUploaded       bool
	TimestampsRequested int
	TimestampsFailed    int
}

// TimestampReport summarises a timestamp generation pass.
type TimestampReport struct {
	Requested int
	Failed    int
}

// New builds a Publisher. A client is required; the journal and notifier
// fall back to no-ops.
func New(opts Options) (*Publisher, error) {
	if opts.Client == nil {
		return nil, errors.New("publish: lingq client is required")
	}
	p := &Publisher{
		client:       opts.Client,
		journal:      opts.Journal,
		notifier:     opts.Notifier,
		logger:       logging.NewComponentLogger(opts.Logger, "publish"),
		lessonStatus: strings.TrimSpace(opts.LessonStatus),
		cover:        opts.Cover,
		workDir:      strings.TrimSpace(opts.WorkDir),
	}
	if p.journal == nil {
		p.journal = memoryJournal{}
	}
	if p.notifier == nil {
		p.notifier = notifications.NewNoop()
	}
	if p.lessonStatus == "" {
		p.lessonStatus = DefaultLessonStatus
	}
	if p.workDir == "" {
		p.workDir = filepath.Join(os.TempDir(), "lingq-upload")
	}
	return p, nil
}

func (p *Publisher) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, payload notifications.Payload) {
	if err := p.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

func (p *Publisher) journalUpdate(ctx context.Context, logger *slog.Logger, run *history.Run) {
	if err := p.journal.Update(ctx, run); err != nil {
		logging.WarnWithContext(logger, "history update failed", "history_update_failed",
			logging.String("status", string(run.Status)),
			logging.Error(err),
		)
	}
}

// memoryJournal hands out runs without persisting them.
type memoryJournal struct{}

func (memoryJournal) Begin(_ context.Context, kind history.Kind, sourceDir, title string, total int) (*history.Run, error) {
	return &history.Run{Kind: kind, SourceDir: sourceDir, Title: title, Status: history.StatusPlanned, LessonsTotal: total}, nil
}

func (memoryJournal) Update(context.Context, *history.Run) error { return nil }
