package runs

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// historyVersion is stored in SQLite's user_version pragma. A fresh file
// reports 0.
const historyVersion = 1

// ErrSchemaMismatch reports a history database written by a different build.
var ErrSchemaMismatch = errors.New("run history version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read history version: %w", err)
	}
	switch version {
	case historyVersion:
		return nil
	case 0:
		return s.create(ctx)
	default:
		return fmt.Errorf("%w: %s is version %d, this mashup reads version %d; move the file aside to start a new history",
			ErrSchemaMismatch, s.path, version, historyVersion)
	}
}

func (s *Store) create(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", historyVersion)); err != nil {
		return fmt.Errorf("set history version: %w", err)
	}
	return tx.Commit()
}
