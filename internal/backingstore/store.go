// Package backingstore defines the Backing Store collaborator: the
// persistence layer that consumes a journal's per-table diffs at
// commit time. Journal.Commit never calls a Store: callers wire
// Journal.GetDiff() into Store.Apply after a successful Commit, or use
// Journal.CommitTo, which seals the journal and then runs ApplyAll.
package backingstore

import (
	"context"

	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

// Store persists one table's diff. Implementations decide how to
// translate added/modified/deleted row images into their own storage
// format.
type Store interface {
	Apply(ctx context.Context, tableName string, diff *tablediff.TableDiff) error
	Close() error
}

// ApplyAll hands every non-empty table diff to store, in Go map
// iteration order (not defined). Stops at the first error.
func ApplyAll(ctx context.Context, store Store, diffs map[string]*tablediff.TableDiff) error {
	for table, diff := range diffs {
		if diff.IsEmpty() {
			continue
		}
		if err := store.Apply(ctx, table, diff); err != nil {
			return err
		}
	}
	return nil
}
