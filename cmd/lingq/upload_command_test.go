package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lingq_upload/internal/testsupport"
)

func TestPlanCommandPrintsLessons(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 3)

	out, _, err := runCLI(t, []string{"plan", dir}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "The Book")
	requireContains(t, out, "Beginner 2 (code 2)")
	requireContains(t, out, "fiction, book")
	requireContains(t, out, "book-03")
	if got := len(env.lingq.recorded()); got != 0 {
		t.Fatalf("plan must not call LingQ, saw %v", env.lingq.recorded())
	}
}

func TestPlanCommandAppliesOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 2)

	out, _, err := runCLI(t, []string{"plan", dir, "--title", "Renamed", "--level", "Advanced 1", "--tags", "x, y"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "Renamed")
	requireContains(t, out, "Advanced 1 (code 5)")
	requireContains(t, out, "x, y, book")
}

func TestPlanCommandFailsWithoutAudio(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 2)
	if _, _, err := runCLI(t, []string{"plan", dir, "--audio-dir", env.baseDir}, env.configPath); err == nil {
		t.Fatal("expected an error for an audio directory without MP3 files")
	}
}

func TestUploadRejectsUnknownLevel(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 2)

	_, _, err := runCLI(t, []string{"upload", dir, "--level", "Expert"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid level") {
		t.Fatalf("expected invalid level error, got %v", err)
	}
	if got := len(env.lingq.recorded()); got != 0 {
		t.Fatalf("expected no remote calls, saw %v", env.lingq.recorded())
	}
}

func TestUploadDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 2)

	out, _, err := runCLI(t, []string{"upload", dir, "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("upload --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run")
	if got := len(env.lingq.recorded()); got != 0 {
		t.Fatalf("expected no remote calls, saw %v", env.lingq.recorded())
	}
}

func TestUploadPublishesAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBook(t, env.baseDir, "book", 3)

	out, _, err := runCLI(t, []string{"upload", dir}, env.configPath)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	requireContains(t, out, `Uploaded "The Book" as collection 101 (3 lessons)`)

	fake := env.lingq
	if got := fake.count("POST /collections/"); got != 1 {
		t.Fatalf("expected one collection, got %d (%v)", got, fake.recorded())
	}
	if got := fake.count("POST /lessons/"); got != 3 {
		t.Fatalf("expected three lessons, got %d", got)
	}
	if got := fake.countPrefix("PATCH /lessons/"); got != 3 {
		t.Fatalf("expected three audio attachments, got %d", got)
	}
	if got := fake.count("POST /collections/101/lessons/"); got != 3 {
		t.Fatalf("expected three bulk updates, got %d", got)
	}
	if got := fake.countPrefix("POST /lessons/10"); got != 3 {
		t.Fatalf("expected three timestamp requests, got %d", got)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "The Book")
	requireContains(t, out, "completed")
	requireContains(t, out, "3/3")
}

func TestUploadRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.LingQ.APIKey = ""
	writeTestConfig(t, env.configPath, env.cfg)
	dir := writeBook(t, env.baseDir, "book", 1)

	_, _, err := runCLI(t, []string{"upload", dir}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if got := len(env.lingq.recorded()); got != 0 {
		t.Fatalf("expected no remote calls, saw %v", env.lingq.recorded())
	}
}

func writeBookWithEmbeddedCover(t *testing.T, root string) string {
	t.Helper()
	dir := writeBook(t, root, "book", 1)
	testsupport.WriteEPUB(t, filepath.Join(dir, "book.epub"), testsupport.EPUBBook{
		Title:     "The Book",
		Documents: testsupport.SplitChapters(1),
		Images:    []testsupport.EPUBImage{{Name: "cover.jpg", Data: []byte("epub-cover")}},
	})
	return dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestPlanAndDryRunLeaveBookDirectoryUntouched(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBookWithEmbeddedCover(t, env.baseDir)
	before := listDir(t, dir)

	for _, args := range [][]string{{"plan", dir}, {"upload", dir, "--dry-run"}} {
		out, _, err := runCLI(t, args, env.configPath)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		requireContains(t, out, "available in EPUB (cover.jpg)")
	}
	if after := listDir(t, dir); !reflect.DeepEqual(before, after) {
		t.Fatalf("book directory changed: %v -> %v", before, after)
	}
	if names := listDir(t, filepath.Join(env.cfg.Paths.StateDir, "covers")); len(names) != 0 {
		t.Fatalf("expected no extracted covers, found %v", names)
	}
}

func TestUploadRemovesExtractedCover(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := writeBookWithEmbeddedCover(t, env.baseDir)
	before := listDir(t, dir)

	if _, _, err := runCLI(t, []string{"upload", dir}, env.configPath); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if got := env.lingq.count("PATCH /collections/101/"); got != 1 {
		t.Fatalf("expected one cover upload, saw %v", env.lingq.recorded())
	}
	if after := listDir(t, dir); !reflect.DeepEqual(before, after) {
		t.Fatalf("book directory changed: %v -> %v", before, after)
	}
	if names := listDir(t, filepath.Join(env.cfg.Paths.StateDir, "covers")); len(names) != 0 {
		t.Fatalf("expected extracted covers cleaned up, found %v", names)
	}
}
