// Package journal implements the transaction journal: it holds a
// scope, a map from table name to its accumulated
// tablediff.TableDiff, and a terminal flag, validating every mutation
// against scope and primary-key constraints before applying it to the
// row cache and index store.
package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kasuganosora/sqlexec/internal/backingstore"
	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/indexstore"
	"github.com/kasuganosora/sqlexec/internal/rowcache"
	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

// Journal mediates writes for one enclosing transaction. It holds
// non-owning references to the shared row cache and index store,
// both of which outlive any single journal, and exclusively owns its
// accumulated per-table diffs.
type Journal struct {
	id         uuid.UUID
	scope      map[string]domain.TableSchema
	tableDiffs map[string]*tablediff.TableDiff
	terminated bool

	cache   *rowcache.Cache
	indices *indexstore.Store
}

// New constructs a Journal over the given scope, taking the shared
// row cache and index store as constructor dependencies rather than
// reaching for a global service locator.
func New(scope []domain.TableSchema, cache *rowcache.Cache, indices *indexstore.Store) *Journal {
	scopeMap := make(map[string]domain.TableSchema, len(scope))
	for _, s := range scope {
		scopeMap[s.GetName()] = s
		indices.EnsureTable(s.GetName())
	}
	return &Journal{
		id:         uuid.New(),
		scope:      scopeMap,
		tableDiffs: make(map[string]*tablediff.TableDiff),
		cache:      cache,
		indices:    indices,
	}
}

// ID returns the journal's session id, for correlating log lines
// about this journal (journalctl logs it after committing). The
// backing-store adapters do not receive or log it.
func (j *Journal) ID() uuid.UUID { return j.id }

func (j *Journal) assertLive() {
	if j.terminated {
		panic(fmt.Sprintf("journal %s: operation attempted after commit/rollback", j.id))
	}
}

// GetScope returns the set of table schemas the journal may touch.
// Callers must not mutate the returned map.
func (j *Journal) GetScope() map[string]domain.TableSchema {
	return j.scope
}

// GetDiff returns the accumulated per-table diffs. Callers must not
// mutate the returned map or its values.
func (j *Journal) GetDiff() map[string]*tablediff.TableDiff {
	return j.tableDiffs
}

// GetIndexRange returns the de-duplicated list of row-ids whose index
// key falls in any of the given ranges, consulting the current
// (journal-applied) state of the named index.
func (j *Journal) GetIndexRange(indexSchema domain.IndexSchema, ranges []indexstore.KeyRange) []domain.RowID {
	idx := j.indices.Get(indexSchema.Name)
	if idx == nil {
		return nil
	}

	seen := make(map[domain.RowID]bool)
	var out []domain.RowID
	if len(ranges) == 0 {
		ranges = []indexstore.KeyRange{{}}
	}
	for i := range ranges {
		for _, id := range idx.GetRange(&ranges[i]) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// GetTableRows fetches rows from the cache. If rowIDs is non-nil,
// positions are preserved and a missing row-id yields a nil entry at
// that position. If rowIDs is nil, every row-id belonging to table is
// enumerated via the row-id index first.
func (j *Journal) GetTableRows(table string, rowIDs []domain.RowID) []domain.Row {
	if rowIDs != nil {
		return j.cache.Get(table, rowIDs)
	}
	ids := j.indices.GetRowIdIndex(table).GetRange(nil)
	return j.cache.Get(table, ids)
}

// Insert validates scope and primary-key constraints, then applies a
// diff recording an add per row. A failing call leaves the journal
// byte-identical to its prior state.
func (j *Journal) Insert(table string, rows []domain.Row) error {
	j.assertLive()

	schema, ok := j.scope[table]
	if !ok {
		return domain.NewScopeError(table)
	}

	if pk := schema.GetConstraint().GetPrimaryKey(); pk != nil {
		if err := j.checkBatchPKsDistinct(table, pk.Name, rows); err != nil {
			return err
		}
		if err := j.checkPKsNotExisting(schema, pk.Name, rows); err != nil {
			return err
		}
	}

	for _, row := range rows {
		j.assignRowIDIfUnset(table, row)
	}

	diff := tablediff.New()
	for _, row := range rows {
		diff.Add(row)
	}
	j.applyTableDiff(schema, diff)
	return nil
}

func (j *Journal) checkBatchPKsDistinct(table, pkName string, rows []domain.Row) error {
	seen := make(map[string]domain.IndexKey, len(rows))
	for _, row := range rows {
		key := row.KeyOfIndex(pkName)
		enc := indexstore.EncodeKey(key)
		if _, dup := seen[enc]; dup {
			return domain.NewDuplicatePKError(table, key.String())
		}
		seen[enc] = key
	}
	return nil
}

func (j *Journal) checkPKsNotExisting(schema domain.TableSchema, pkName string, rows []domain.Row) error {
	for _, row := range rows {
		key := row.KeyOfIndex(pkName)
		if _, found := j.findExistingRowIdInPkIndex(schema, key); found {
			return domain.NewExistingPKError(schema.GetName(), key.String())
		}
	}
	return nil
}

// Update fetches the current image of each row from the cache and
// records a modify per row. At most one row in the batch may change
// its primary key; if it does, the new key must not collide with any
// other existing row.
func (j *Journal) Update(table string, rows []domain.Row) error {
	j.assertLive()

	schema, ok := j.scope[table]
	if !ok {
		return domain.NewScopeError(table)
	}

	oldImages := make([]domain.Row, len(rows))
	for i, row := range rows {
		images := j.cache.Get(table, []domain.RowID{row.ID()})
		oldImages[i] = images[0]
	}

	if pk := schema.GetConstraint().GetPrimaryKey(); pk != nil {
		if err := j.checkPKReassignment(schema, pk.Name, rows, oldImages); err != nil {
			return err
		}
	}

	diff := tablediff.New()
	for i, row := range rows {
		diff.Modify(oldImages[i], row)
	}
	j.applyTableDiff(schema, diff)
	return nil
}

func (j *Journal) checkPKReassignment(schema domain.TableSchema, pkName string, rows, oldImages []domain.Row) error {
	changedIdx := -1
	changedCount := 0
	for i, row := range rows {
		old := oldImages[i]
		if old == nil {
			continue
		}
		if !row.KeyOfIndex(pkName).Equal(old.KeyOfIndex(pkName)) {
			changedCount++
			changedIdx = i
		}
	}
	if changedCount == 0 {
		return nil
	}
	if changedCount > 1 {
		return domain.NewPKReassignmentError(schema.GetName(), "<multiple>")
	}

	newKey := rows[changedIdx].KeyOfIndex(pkName)
	if existingID, found := j.findExistingRowIdInPkIndex(schema, newKey); found {
		if existingID != rows[changedIdx].ID() {
			return domain.NewPKReassignmentError(schema.GetName(), newKey.String())
		}
	}
	return nil
}

// InsertOrReplace coalesces each row onto an existing row sharing its
// primary key (reassigning the new row's row-id and recording a
// modify), or adds it as a brand-new row when no such row exists. No
// uniqueness pre-check is needed: collisions resolve to
// modifications rather than failing.
func (j *Journal) InsertOrReplace(table string, rows []domain.Row) error {
	j.assertLive()

	schema, ok := j.scope[table]
	if !ok {
		return domain.NewScopeError(table)
	}

	pk := schema.GetConstraint().GetPrimaryKey()
	diff := tablediff.New()
	for _, row := range rows {
		if pk != nil {
			key := row.KeyOfIndex(pk.Name)
			if existingID, found := j.findExistingRowIdInPkIndex(schema, key); found {
				existing := j.cache.Get(table, []domain.RowID{existingID})[0]
				row.SetRowID(existingID)
				diff.Modify(existing, row)
				continue
			}
		}
		j.assignRowIDIfUnset(table, row)
		diff.Add(row)
	}
	j.applyTableDiff(schema, diff)
	return nil
}

// Remove records a delete per row, using the row's current cached
// image as the last-known image when available.
func (j *Journal) Remove(table string, rows []domain.Row) error {
	j.assertLive()

	schema, ok := j.scope[table]
	if !ok {
		return domain.NewScopeError(table)
	}

	diff := tablediff.New()
	for _, row := range rows {
		image := row
		if cached := j.cache.Get(table, []domain.RowID{row.ID()})[0]; cached != nil {
			image = cached
		}
		diff.Delete(image)
	}
	j.applyTableDiff(schema, diff)
	return nil
}

// Commit seals the journal's accumulated diff. The journal does not
// itself persist; the enclosing transaction hands GetDiff() to the
// backing store.
func (j *Journal) Commit() error {
	j.assertLive()
	j.terminated = true
	return nil
}

// CommitTo seals the journal and hands its accumulated diff to store,
// for callers that don't want to wire GetDiff() into a backing store
// themselves. Commit alone still only seals the diff.
func (j *Journal) CommitTo(ctx context.Context, store backingstore.Store) error {
	if err := j.Commit(); err != nil {
		return err
	}
	return backingstore.ApplyAll(ctx, store, j.tableDiffs)
}

// Rollback computes the reverse of each accumulated per-table diff
// and applies it to the indices and cache, restoring the journal's
// pre-transaction state.
func (j *Journal) Rollback() error {
	j.assertLive()
	for name, diff := range j.tableDiffs {
		schema := j.scope[name]
		reverse := diff.Reverse()
		j.applyReverseOnly(schema, reverse)
	}
	j.tableDiffs = make(map[string]*tablediff.TableDiff)
	j.terminated = true
	return nil
}

// assignRowIDIfUnset mints a fresh row-id for brand-new rows that
// arrive without one (row-id zero).
func (j *Journal) assignRowIDIfUnset(table string, row domain.Row) {
	if row.ID() == 0 {
		row.SetRowID(j.cache.NextRowID(table))
	}
}

// findExistingRowIdInPkIndex projects the PK from a key and queries
// the PK index for it, returning the first matching row-id. Because
// indices already reflect prior operations of this journal, this
// automatically checks the current transactional view. When multiple
// rows collide only the first is reported, keeping error messages
// stable.
func (j *Journal) findExistingRowIdInPkIndex(schema domain.TableSchema, key domain.IndexKey) (domain.RowID, bool) {
	pk := schema.GetConstraint().GetPrimaryKey()
	if pk == nil {
		return 0, false
	}
	idx := j.indices.Get(pk.Name)
	if idx == nil {
		return 0, false
	}
	ids := idx.Get(key)
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}
