// Package sqlstore implements a Backing Store collaborator backed by
// database/sql. Its statements are written in SQLite syntax ("?"
// placeholders, BLOB, "INSERT OR REPLACE") and are exercised against
// modernc.org/sqlite; they are not rewritten for other dialects such
// as MySQL or Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/sqlexec/internal/backingstore"
	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS journal_rows (
	table_name TEXT NOT NULL,
	row_id     BIGINT NOT NULL,
	payload    BLOB,
	updated_at TIMESTAMP,
	PRIMARY KEY (table_name, row_id)
)`

// Store persists committed diffs through a *sql.DB connection.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open wraps an already-opened *sql.DB (for example
// sql.Open("sqlite", dsn)) and ensures the journal_rows table exists.
func Open(ctx context.Context, db *sql.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("sqlstore: create table: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Apply upserts added/modified rows and deletes removed rows, inside
// one SQL transaction. The upsert statement is SQLite's fixed
// "INSERT OR REPLACE"; there is no option to substitute another
// dialect's upsert.
func (s *Store) Apply(ctx context.Context, tableName string, diff *tablediff.TableDiff) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()

	for id, row := range diff.Added() {
		payload, encErr := backingstore.EncodeRow(row)
		if encErr != nil {
			return encErr
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO journal_rows (table_name, row_id, payload, updated_at) VALUES (?, ?, ?, ?)`,
			tableName, int64(id), payload, time.Now()); err != nil {
			return fmt.Errorf("sqlstore: insert %s/%d: %w", tableName, id, err)
		}
	}
	for id, entry := range diff.Modified() {
		payload, encErr := backingstore.EncodeRow(entry.New)
		if encErr != nil {
			return encErr
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO journal_rows (table_name, row_id, payload, updated_at) VALUES (?, ?, ?, ?)`,
			tableName, int64(id), payload, time.Now()); err != nil {
			return fmt.Errorf("sqlstore: update %s/%d: %w", tableName, id, err)
		}
	}
	for id := range diff.Deleted() {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM journal_rows WHERE table_name = ? AND row_id = ?`,
			tableName, int64(id)); err != nil {
			return fmt.Errorf("sqlstore: delete %s/%d: %w", tableName, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	s.log.Info("committed table diff",
		zap.String("table", tableName),
		zap.Int("added", len(diff.Added())),
		zap.Int("modified", len(diff.Modified())),
		zap.Int("deleted", len(diff.Deleted())),
	)
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ backingstore.Store = (*Store)(nil)
