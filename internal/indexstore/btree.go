package indexstore

import (
	"sort"
	"sync"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// entry is one distinct key in a BTreeIndex, carrying every row-id
// currently associated with it (non-unique indices may map several
// rows onto the same key).
type entry struct {
	key    domain.IndexKey
	rowIDs []domain.RowID
}

// BTreeIndex is a range-scan-capable index kept as a slice of entries
// sorted by key. A real B+Tree would give O(log n) mutation; the
// sorted-slice form keeps the same external contract.
type BTreeIndex struct {
	name string
	mu   sync.RWMutex
	rows []entry
}

// NewBTreeIndex creates an empty BTreeIndex registered under name.
func NewBTreeIndex(name string) *BTreeIndex {
	return &BTreeIndex{name: name}
}

func (idx *BTreeIndex) GetName() string { return idx.name }

func (idx *BTreeIndex) find(key domain.IndexKey) int {
	return sort.Search(len(idx.rows), func(i int) bool {
		return !idx.rows[i].key.Less(key)
	})
}

func (idx *BTreeIndex) Get(key domain.IndexKey) []domain.RowID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	i := idx.find(key)
	if i < len(idx.rows) && idx.rows[i].key.Equal(key) {
		out := make([]domain.RowID, len(idx.rows[i].rowIDs))
		copy(out, idx.rows[i].rowIDs)
		return out
	}
	return nil
}

func (idx *BTreeIndex) GetRange(r *KeyRange) []domain.RowID {
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

func (idx *BTreeIndex) Set(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	i := idx.find(key)
	if i < len(idx.rows) && idx.rows[i].key.Equal(key) {
		for _, id := range idx.rows[i].rowIDs {
			if id == rowID {
				return
			}
		}
		idx.rows[i].rowIDs = append(idx.rows[i].rowIDs, rowID)
		return
	}
	newEntry := entry{key: key, rowIDs: []domain.RowID{rowID}}
	idx.rows = append(idx.rows, entry{})
	copy(idx.rows[i+1:], idx.rows[i:])
	idx.rows[i] = newEntry
}

func (idx *BTreeIndex) Remove(key domain.IndexKey, rowID domain.RowID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	i := idx.find(key)
	if i >= len(idx.rows) || !idx.rows[i].key.Equal(key) {
		return
	}
	ids := idx.rows[i].rowIDs
	for j, id := range ids {
		if id == rowID {
			idx.rows[i].rowIDs = append(ids[:j], ids[j+1:]...)
			break
		}
	}
	if len(idx.rows[i].rowIDs) == 0 {
		idx.rows = append(idx.rows[:i], idx.rows[i+1:]...)
	}
}
