package history

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var journalDDL string

// journalVersion is stored in SQLite's user_version pragma. A fresh file
// reports 0.
const journalVersion = 1

// ErrJournalVersion reports a history file written by a different release.
var ErrJournalVersion = errors.New("upload history version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}
	switch version {
	case journalVersion:
		return nil
	case 0:
		return s.createJournal(ctx)
	default:
		return fmt.Errorf("%w: %s is at version %d, this build reads %d; move the file aside to start a new history",
			ErrJournalVersion, s.path, version, journalVersion)
	}
}

// createJournal creates the runs table and stamps the version in one
// transaction.
func (s *Store) createJournal(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, journalDDL); err != nil {
		return fmt.Errorf("create upload_runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", journalVersion)); err != nil {
		return fmt.Errorf("stamp history version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history setup: %w", err)
	}
	return nil
}
