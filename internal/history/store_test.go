package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"lingq_upload/internal/history"
	"lingq_upload/internal/testsupport"
)

func TestBeginAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run, err := store.Begin(ctx, history.KindBook, "/books/alice", "Alice", 12)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if run.ID == "" || run.Status != history.StatusPlanned {
		t.Fatalf("unexpected run %+v", run)
	}
	if store.Path() != filepath.Join(cfg.Paths.StateDir, "history.db") {
		t.Fatalf("unexpected db path %q", store.Path())
	}

	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched == nil || fetched.Title != "Alice" || fetched.LessonsTotal != 12 || fetched.Kind != history.KindBook {
		t.Fatalf("unexpected fetched run %+v", fetched)
	}
	if fetched.CollectionID != 0 || fetched.FinishedAt != nil {
		t.Fatalf("expected no collection and no finish time, got %+v", fetched)
	}

	missing, err := store.Get(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown run, got %+v %v", missing, err)
	}
}

func TestUpdateStampsFinish(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	run, err := store.Begin(ctx, history.KindBook, "/books/alice", "Alice", 3)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	run.Status = history.StatusUploading
	run.CollectionID = 4242
	run.LessonsUploaded = 2
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if run.FinishedAt != nil {
		t.Fatal("non-terminal run must not be finished")
	}

	run.Status = history.StatusFailed
	run.ErrorMessage = "lingq attach audio failed (status 500)"
	if err := store.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fetched, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if fetched.Status != history.StatusFailed || fetched.CollectionID != 4242 || fetched.LessonsUploaded != 2 {
		t.Fatalf("unexpected run %+v", fetched)
	}
	if fetched.FinishedAt == nil || fetched.ErrorMessage == "" {
		t.Fatalf("expected finish time and error, got %+v", fetched)
	}
	if !fetched.LeftRemoteState() {
		t.Fatal("failed run with collection must be flagged")
	}
}

func TestUpdateUnknownRunFails(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	err := store.Update(context.Background(), &history.Run{ID: "missing", Status: history.StatusFailed})
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestRecentOrphansAndForSource(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()

	completed, _ := store.Begin(ctx, history.KindBook, "/books/a", "A", 1)
	completed.Status = history.StatusCompleted
	completed.CollectionID = 1
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	orphan, _ := store.Begin(ctx, history.KindBook, "/books/b", "B", 2)
	orphan.Status = history.StatusFailed
	orphan.CollectionID = 2
	if err := store.Update(ctx, orphan); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rejected, _ := store.Begin(ctx, history.KindPodcast, "/books/b", "B again", 0)
	rejected.Status = history.StatusRejected
	if err := store.Update(ctx, rejected); err != nil {
		t.Fatalf("Update: %v", err)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 || recent[0].ID != rejected.ID {
		t.Fatalf("expected newest first, got %d runs", len(recent))
	}

	orphans, err := store.Orphans(ctx)
	if err != nil {
		t.Fatalf("Orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].ID != orphan.ID {
		t.Fatalf("expected only the failed run with a collection, got %+v", orphans)
	}

	forB, err := store.ForSource(ctx, "/books/b")
	if err != nil {
		t.Fatalf("ForSource: %v", err)
	}
	if len(forB) != 2 {
		t.Fatalf("expected two runs for /books/b, got %d", len(forB))
	}
}

func TestOpenRejectsNewerHistoryVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrJournalVersion) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}
