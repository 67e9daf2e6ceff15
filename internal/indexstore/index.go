// Package indexstore implements the Index Store collaborator: normalized,
// named indices supporting point lookup, range scan, insertion, and
// removal, plus the implicit per-table row-id index. All indices
// operate over the tagged domain.IndexKey variant rather than
// column-specific types.
package indexstore

import "github.com/kasuganosora/sqlexec/internal/domain"

// KeyRange bounds a range scan. A nil Min/Max side means unbounded on
// that side; MinExclusive/MaxExclusive control whether the respective
// bound is open or closed. A zero-value KeyRange (both bounds nil)
// scans the whole index.
type KeyRange struct {
	Min, Max                   *domain.IndexKey
	MinExclusive, MaxExclusive bool
}

// Index is one named index: point lookup, range scan, insertion, and
// removal of (key, row-id) pairs.
type Index interface {
	// GetName returns the normalized name this index is registered
	// under.
	GetName() string

	// Get returns every row-id stored under key.
	Get(key domain.IndexKey) []domain.RowID

	// GetRange returns every row-id whose key falls within r. A nil r
	// means the whole index.
	GetRange(r *KeyRange) []domain.RowID

	// Set records that rowID is associated with key.
	Set(key domain.IndexKey, rowID domain.RowID)

	// Remove drops the association between key and rowID.
	Remove(key domain.IndexKey, rowID domain.RowID)
}

func inRange(k domain.IndexKey, r *KeyRange) bool {
	if r == nil {
		return true
	}
	if r.Min != nil {
		if r.MinExclusive {
			if !r.Min.Less(k) {
				return false
			}
		} else if k.Less(*r.Min) {
			return false
		}
	}
	if r.Max != nil {
		if r.MaxExclusive {
			if !k.Less(*r.Max) {
				return false
			}
		} else if r.Max.Less(k) {
			return false
		}
	}
	return true
}
