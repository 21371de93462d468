package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lingq_upload/internal/config"
)

// Store manages the upload journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Begin records a new planned run and returns it.
func (s *Store) Begin(ctx context.Context, kind Kind, sourceDir, title string, lessonsTotal int) (*Run, error) {
	ctx = ensureContext(ctx)
	now := time.Now().UTC()
	run := &Run{
		ID:           uuid.NewString(),
		Kind:         kind,
		SourceDir:    sourceDir,
		Title:        title,
		Status:       StatusPlanned,
		LessonsTotal: lessonsTotal,
		StartedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO upload_runs (
            id, kind, source_dir, title, status, lessons_total, started_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Kind),
		run.SourceDir,
		run.Title,
		string(run.Status),
		run.LessonsTotal,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Update persists the mutable fields of run. FinishedAt is stamped when the
// run reaches a terminal status.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	ctx = ensureContext(ctx)
	run.UpdatedAt = time.Now().UTC()
	if run.IsTerminal() && run.FinishedAt == nil {
		finished := run.UpdatedAt
		run.FinishedAt = &finished
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE upload_runs
         SET title = ?, collection_id = ?, status = ?, lessons_total = ?, lessons_uploaded = ?,
             timestamps_failed = ?, error_message = ?, updated_at = ?, finished_at = ?
         WHERE id = ?`,
		run.Title,
		nullableInt(run.CollectionID),
		string(run.Status),
		run.LessonsTotal,
		run.LessonsUploaded,
		run.TimestampsFailed,
		nullableString(run.ErrorMessage),
		formatTime(run.UpdatedAt),
		nullableTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run %s: not found", run.ID)
	}
	return nil
}

const runColumns = `id, kind, source_dir, title, collection_id, status, lessons_total,
    lessons_uploaded, timestamps_failed, error_message, started_at, updated_at, finished_at`

// Get returns the run with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM upload_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM upload_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ForSource returns every run recorded for a source directory, newest first.
func (s *Store) ForSource(ctx context.Context, sourceDir string) ([]*Run, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM upload_runs WHERE source_dir = ? ORDER BY started_at DESC, rowid DESC`, sourceDir)
	if err != nil {
		return nil, fmt.Errorf("list runs for source: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// Orphans returns runs that left a remote collection behind without
// completing.
func (s *Store) Orphans(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+runColumns+` FROM upload_runs
         WHERE collection_id IS NOT NULL AND status != ?
         ORDER BY started_at DESC, rowid DESC`, string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("list orphaned runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run          Run
		kind, status string
		collectionID sql.NullInt64
		errorMessage sql.NullString
		startedAt    string
		updatedAt    string
		finishedAt   sql.NullString
	)
	if err := row.Scan(
		&run.ID, &kind, &run.SourceDir, &run.Title, &collectionID, &status,
		&run.LessonsTotal, &run.LessonsUploaded, &run.TimestampsFailed, &errorMessage,
		&startedAt, &updatedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	run.Kind = Kind(kind)
	run.Status = Status(status)
	if collectionID.Valid {
		run.CollectionID = int(collectionID.Int64)
	}
	run.ErrorMessage = errorMessage.String
	run.StartedAt = parseTime(startedAt)
	run.UpdatedAt = parseTime(updatedAt)
	if finishedAt.Valid && finishedAt.String != "" {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}
