package indexstore

import (
	"sync"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// HashIndex is an O(1) point-lookup index, used for primary keys and
// the implicit row-id index where range scans are not the common
// case. GetRange falls back to a full scan.
type HashIndex struct {
	name string
	mu   sync.RWMutex
	rows map[string]*entry
}

// NewHashIndex creates an empty HashIndex registered under name.
func NewHashIndex(name string) *HashIndex {
	return &HashIndex{name: name, rows: make(map[string]*entry)}
}

func (idx *HashIndex) GetName() string { return idx.name }

func (idx *HashIndex) Get(key domain.IndexKey) []domain.RowID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	e, ok := idx.rows[encodeKey(key)]
	if !ok {
		return nil
	}
	out := make([]domain.RowID, len(e.rowIDs))
	copy(out, e.rowIDs)
	return out
}

func (idx *HashIndex) GetRange(r *KeyRange) []domain.RowID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []domain.RowID
	for _, e := range idx.rows {
		if inRange(e.key, r) {
			out = append(out, e.rowIDs...)
		}
	}
	return out
}

func (idx *HashIndex) Set(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	k := encodeKey(key)
	e, ok := idx.rows[k]
	if !ok {
		idx.rows[k] = &entry{key: key, rowIDs: []domain.RowID{rowID}}
		return
	}
	for _, id := range e.rowIDs {
		if id == rowID {
			return
		}
	}
	e.rowIDs = append(e.rowIDs, rowID)
}

func (idx *HashIndex) Remove(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	k := encodeKey(key)
	e, ok := idx.rows[k]
	if !ok {
		return
	}
	for i, id := range e.rowIDs {
		if id == rowID {
			e.rowIDs = append(e.rowIDs[:i], e.rowIDs[i+1:]...)
			break
		}
	}
	if len(e.rowIDs) == 0 {
		delete(idx.rows, k)
	}
}
