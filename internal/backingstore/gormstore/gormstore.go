// Package gormstore implements a Backing Store collaborator backed by
// gorm.io/gorm. Rather than modeling every application table, it
// persists committed rows into a single generic table keyed by
// (table name, row-id): the backing store only ever sees opaque row
// payloads, so a per-table GORM model would require schema
// information the journal deliberately doesn't have.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kasuganosora/sqlexec/internal/backingstore"
	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

// journalRow is the generic GORM model every committed row is stored
// as.
type journalRow struct {
	Table     string `gorm:"primaryKey;column:table_name"`
	RowID     int64  `gorm:"primaryKey;column:row_id"`
	Payload   []byte `gorm:"column:payload"`
	UpdatedAt time.Time
}

func (journalRow) TableName() string { return "journal_rows" }

// Store persists committed diffs through a *gorm.DB connection.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// Open runs the auto-migration for journalRow and returns a Store
// wrapping db. Callers construct db with whichever gorm.Dialector
// fits their deployment (gorm.io/driver/sqlite, postgres, mysql, ...).
func Open(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&journalRow{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Apply upserts added/modified rows and deletes removed rows, inside
// one GORM transaction.
func (s *Store) Apply(ctx context.Context, tableName string, diff *tablediff.TableDiff) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, row := range diff.Added() {
			if err := upsert(tx, tableName, int64(id), row); err != nil {
				return err
			}
		}
		for id, entry := range diff.Modified() {
			if err := upsert(tx, tableName, int64(id), entry.New); err != nil {
				return err
			}
		}
		for id := range diff.Deleted() {
			if err := tx.Where("table_name = ? AND row_id = ?", tableName, int64(id)).
				Delete(&journalRow{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("gormstore: apply %s: %w", tableName, err)
	}
	s.log.Info("committed table diff",
		zap.String("table", tableName),
		zap.Int("added", len(diff.Added())),
		zap.Int("modified", len(diff.Modified())),
		zap.Int("deleted", len(diff.Deleted())),
	)
	return nil
}

func upsert(tx *gorm.DB, tableName string, id int64, row domain.Row) error {
	payload, err := backingstore.EncodeRow(row)
	if err != nil {
		return err
	}
	record := journalRow{Table: tableName, RowID: id, Payload: payload, UpdatedAt: time.Now()}
	return tx.Save(&record).Error
}

// Close releases the underlying *sql.DB connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ backingstore.Store = (*Store)(nil)
