package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"lingq_upload/internal/config"
	"lingq_upload/internal/ingest"
	"lingq_upload/internal/textutil"
)

func parseCollectionID(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, errors.New("collection id is required")
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid collection id %q", arg)
	}
	return id, nil
}

func validateLevel(level string) error {
	if ingest.IsKnownLevel(level) {
		return nil
	}
	return fmt.Errorf("invalid level %q (expected one of: %s)", level, strings.Join(ingest.Levels(), ", "))
}

func resolveSourceDir(arg string) (string, error) {
	dir, err := config.ExpandPath(strings.TrimSpace(arg))
	if err != nil {
		return "", fmt.Errorf("resolve source directory: %w", err)
	}
	if dir == "" {
		return "", errors.New("source directory is required")
	}
	return dir, nil
}

// sourceLock guards a source directory against concurrent uploads from
// separate processes.
type sourceLock struct {
	path string
	lock *flock.Flock
}

func acquireSourceLock(cfg *config.Config, sourceDir string) (*sourceLock, error) {
	dir := filepath.Join(cfg.Paths.StateDir, "locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	path := filepath.Join(dir, textutil.SourceKey(sourceDir)+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another upload of %s is already running (lock %s)", sourceDir, path)
	}
	return &sourceLock{path: path, lock: lock}, nil
}

func (l *sourceLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
