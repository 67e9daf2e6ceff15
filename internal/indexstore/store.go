package indexstore

import (
	"sync"

	"golang.org/x/text/cases"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// IndexKind selects which concrete Index implementation backs a
// declared index.
type IndexKind int

const (
	KindBTree IndexKind = iota
	KindHash
	KindFullText
)

// rowIDIndexSuffix is appended to a table name to form the name the
// implicit per-table row-id index is registered under.
const rowIDIndexSuffix = "__row_id__"

// Normalize canonicalizes an index name by case-folding it, so
// "Name_Idx" and "name_idx" address the same index. A Caser is not
// safe for concurrent use, so one is built per call.
func Normalize(name string) string {
	return cases.Fold().String(name)
}

// Store is the Index Store collaborator: it yields, by normalized
// index name, an index object, and yields a per-table row-id index
// that enumerates every row-id belonging to a table.
type Store struct {
	mu       sync.RWMutex
	indices  map[string]Index
	rowIDIdx map[string]*HashIndex
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		indices:  make(map[string]Index),
		rowIDIdx: make(map[string]*HashIndex),
	}
}

// Register creates an index for schema, backed by the requested kind,
// and registers it under schema's normalized name alone (the table is
// not part of the key; registering the same name again replaces the
// earlier index). It also ensures table's row-id index exists. Called
// once per declared index when a table enters scope.
func (s *Store) Register(table string, schema domain.IndexSchema, kind IndexKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := Normalize(schema.Name)
	switch kind {
	case KindFullText:
		s.indices[name] = NewFullTextIndex(name)
	case KindHash:
		s.indices[name] = NewHashIndex(name)
	default:
		s.indices[name] = NewBTreeIndex(name)
	}
	s.ensureRowIDIndexLocked(table)
}

func (s *Store) ensureRowIDIndexLocked(table string) *HashIndex {
	idx, ok := s.rowIDIdx[table]
	if !ok {
		idx = NewHashIndex(table + rowIDIndexSuffix)
		s.rowIDIdx[table] = idx
	}
	return idx
}

// EnsureTable registers the implicit row-id index for table if it
// does not already exist. Safe to call redundantly.
func (s *Store) EnsureTable(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRowIDIndexLocked(table)
}

// Get returns the index registered under the normalized name, or nil
// if no such index was registered.
func (s *Store) Get(name string) Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indices[Normalize(name)]
}

// GetRowIdIndex returns the always-present per-table row-id index,
// creating it on first use.
func (s *Store) GetRowIdIndex(table string) Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureRowIDIndexLocked(table)
}

// Indices returns the registered index for every index schema declares,
// the primary key included (not including the row-id index, which
// callers reach via GetRowIdIndex).
func (s *Store) Indices(schema domain.TableSchema) []Index {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Index, 0, len(schema.Indices))
	for _, is := range schema.Indices {
		if idx, ok := s.indices[Normalize(is.Name)]; ok {
			out = append(out, idx)
		}
	}
	return out
}
