// Package badgerstore implements a Backing Store collaborator backed
// by an embedded github.com/dgraph-io/badger/v4 key-value store,
// keyed with a "row:" prefix by table and row-id.
package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kasuganosora/sqlexec/internal/backingstore"
	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

const rowKeyPrefix = "row:"

// KeyEncoder builds Badger keys for committed rows, using a
// "row:{table}:{row_id}" layout.
type KeyEncoder struct{}

// EncodeRowKey returns the Badger key for one row.
func (KeyEncoder) EncodeRowKey(table string, id domain.RowID) []byte {
	return []byte(fmt.Sprintf("%s%s:%d", rowKeyPrefix, table, id))
}

// Store persists committed diffs into an embedded Badger database.
type Store struct {
	db      *badger.DB
	encoder KeyEncoder
	log     *zap.Logger
}

// Open opens (creating if necessary) a Badger database at dir. An
// empty dir runs Badger fully in memory.
func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Apply persists every added/modified row under its row key and
// deletes the key for every removed row, in one Badger transaction.
func (s *Store) Apply(ctx context.Context, tableName string, diff *tablediff.TableDiff) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for id, row := range diff.Added() {
			if err := s.setRow(txn, tableName, id, row); err != nil {
				return err
			}
		}
		for id, entry := range diff.Modified() {
			if err := s.setRow(txn, tableName, id, entry.New); err != nil {
				return err
			}
		}
		for id := range diff.Deleted() {
			if err := txn.Delete(s.encoder.EncodeRowKey(tableName, id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgerstore: apply %s: %w", tableName, err)
	}
	s.log.Info("committed table diff",
		zap.String("table", tableName),
		zap.Int("added", len(diff.Added())),
		zap.Int("modified", len(diff.Modified())),
		zap.Int("deleted", len(diff.Deleted())),
	)
	return nil
}

func (s *Store) setRow(txn *badger.Txn, table string, id domain.RowID, row domain.Row) error {
	value, err := backingstore.EncodeRow(row)
	if err != nil {
		return err
	}
	return txn.Set(s.encoder.EncodeRowKey(table, id), value)
}

// Close releases the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ backingstore.Store = (*Store)(nil)
