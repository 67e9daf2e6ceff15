// Package rowcache implements the Row Cache collaborator: a
// process-wide mapping from row-id to the latest row image, shared by
// every journal touching the same tables. Mutual exclusion between
// concurrent journals is the outer transaction scheduler's job; the
// cache still guards its own map with a mutex because it is a single
// process-wide structure.
package rowcache

import (
	"sync"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// Cache is the in-memory Row Cache: per-table maps from row-id to row
// image, plus a per-table monotonic row-id counter for callers (like
// insertOrReplace) that need to mint a fresh row-id.
type Cache struct {
	mu      sync.RWMutex
	tables  map[string]map[domain.RowID]domain.Row
	nextIDs map[string]int64
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{
		tables:  make(map[string]map[domain.RowID]domain.Row),
		nextIDs: make(map[string]int64),
	}
}

func (c *Cache) tableLocked(table string) map[domain.RowID]domain.Row {
	t, ok := c.tables[table]
	if !ok {
		t = make(map[domain.RowID]domain.Row)
		c.tables[table] = t
	}
	return t
}

// Get fetches rows by row-id, preserving the order of ids. A missing
// row-id produces a nil entry at that position.
func (c *Cache) Get(table string, ids []domain.RowID) []domain.Row {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.tables[table]
	out := make([]domain.Row, len(ids))
	for i, id := range ids {
		if t != nil {
			out[i] = t[id]
		}
	}
	return out
}

// Set inserts or overwrites the cache entry for each row, keyed by
// row-id.
func (c *Cache) Set(table string, rows []domain.Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tableLocked(table)
	for _, row := range rows {
		t[row.ID()] = row
	}
}

// Remove deletes the cache entries for the given row-ids.
func (c *Cache) Remove(table string, ids []domain.RowID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tables[table]
	if t == nil {
		return
	}
	for _, id := range ids {
		delete(t, id)
	}
}

// AllRowIDs enumerates every row-id currently cached for a table.
// Order is not guaranteed; callers needing deterministic order
// consult the row-id index instead.
func (c *Cache) AllRowIDs(table string) []domain.RowID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.tables[table]
	out := make([]domain.RowID, 0, len(t))
	for id := range t {
		out = append(out, id)
	}
	return out
}

// NextRowID allocates the next row-id for table from a per-table
// monotonic counter.
func (c *Cache) NextRowID(table string) domain.RowID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextIDs[table]++
	return domain.RowID(c.nextIDs[table])
}
