// Package tablediff implements the per-table change record the
// journal accumulates: three disjoint sets of row-level effects
// (added, modified, deleted), keyed by row-id, with merge and
// inversion.
package tablediff

import "github.com/kasuganosora/sqlexec/internal/domain"

// ModifiedEntry pairs a row's image before and after a modification.
type ModifiedEntry struct {
	Old domain.Row
	New domain.Row
}

// TableDiff accumulates adds, modifications, and deletes for one
// table and knows how to merge with another diff and how to produce
// its inverse. Order() lists touched row-ids in first-insertion order
// so repeated runs over the same operation sequence are reproducible;
// the maps returned by Added, Modified and Deleted iterate in Go map
// order.
type TableDiff struct {
	added    map[domain.RowID]domain.Row
	deleted  map[domain.RowID]domain.Row
	modified map[domain.RowID]ModifiedEntry
	order    []domain.RowID
}

// New returns an empty TableDiff.
func New() *TableDiff {
	return &TableDiff{
		added:    make(map[domain.RowID]domain.Row),
		deleted:  make(map[domain.RowID]domain.Row),
		modified: make(map[domain.RowID]ModifiedEntry),
	}
}

func (d *TableDiff) track(id domain.RowID) {
	for _, existing := range d.order {
		if existing == id {
			return
		}
	}
	d.order = append(d.order, id)
}

func (d *TableDiff) untrack(id domain.RowID) {
	for i, existing := range d.order {
		if existing == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

// Add records a brand-new row. Precondition (enforced by the caller,
// the journal, before any mutation lands here): id is not already
// present in deleted or modified.
func (d *TableDiff) Add(row domain.Row) {
	id := row.ID()
	d.track(id)
	d.added[id] = row
}

// Modify records that old became new. old.ID() must equal new.ID().
func (d *TableDiff) Modify(old, new domain.Row) {
	id := old.ID()
	d.track(id)
	d.modified[id] = ModifiedEntry{Old: old, New: new}
}

// Delete records the last-known image of a removed row.
func (d *TableDiff) Delete(row domain.Row) {
	id := row.ID()
	d.track(id)
	d.deleted[id] = row
}

// Added returns the added collection in read-only form.
func (d *TableDiff) Added() map[domain.RowID]domain.Row { return d.added }

// Deleted returns the deleted collection in read-only form.
func (d *TableDiff) Deleted() map[domain.RowID]domain.Row { return d.deleted }

// Modified returns the modified collection in read-only form.
func (d *TableDiff) Modified() map[domain.RowID]ModifiedEntry { return d.modified }

// IsEmpty reports whether the diff carries no effects at all.
func (d *TableDiff) IsEmpty() bool {
	return len(d.added) == 0 && len(d.deleted) == 0 && len(d.modified) == 0
}

// Order returns row-ids in first-touched order, for deterministic
// iteration over the union of the three collections.
func (d *TableDiff) Order() []domain.RowID {
	out := make([]domain.RowID, len(d.order))
	copy(out, d.order)
	return out
}

// Merge folds other into self, treating self as "existing" and
// other's entries as the newly-arriving ops. The result is the diff
// equivalent to applying self then other.
//
//	existing \ new   add            modify(o,n)        delete
//	(absent)         add            modify(o,n)        delete
//	add(r)           invalid        add(n)             removed entirely
//	modify(o1,n1)    invalid        modify(o1,n2)       delete(o1)
//	delete(d)        modify(d,n)    invalid            invalid
//
// delete(d) followed by add(n) always becomes modify(d,n), also when n
// is the same row as d; it never collapses to a no-op.
func (d *TableDiff) Merge(other *TableDiff) {
	for _, id := range other.order {
		switch {
		case isPresent(other.added, id):
			d.mergeAdd(id, other.added[id])
		case isPresentModified(other.modified, id):
			entry := other.modified[id]
			d.mergeModify(id, entry.Old, entry.New)
		case isPresent(other.deleted, id):
			d.mergeDelete(id, other.deleted[id])
		}
	}
}

func isPresent(m map[domain.RowID]domain.Row, id domain.RowID) bool {
	_, ok := m[id]
	return ok
}

func isPresentModified(m map[domain.RowID]ModifiedEntry, id domain.RowID) bool {
	_, ok := m[id]
	return ok
}

// mergeAdd folds an incoming add(n) against whatever self already
// holds for id. Existing add(r) followed by add(n) is a caller bug
// (invalid in the merge table); we treat it as add(n) rather than
// panicking, since validation upstream is responsible for preventing
// it.
func (d *TableDiff) mergeAdd(id domain.RowID, row domain.Row) {
	switch {
	case isPresent(d.deleted, id):
		// delete(existing) then add(row): per the merge table this
		// collapses to modify(existing, row). Callers that know
		// row == existing may prefer a true no-op, but recording the
		// modify is always correct (just not maximally minimal) and
		// avoids needing a generic Row equality check here.
		existing := d.deleted[id]
		delete(d.deleted, id)
		d.untrack(id)
		d.track(id)
		d.modified[id] = ModifiedEntry{Old: existing, New: row}
	default:
		d.track(id)
		d.added[id] = row
	}
}

func (d *TableDiff) mergeModify(id domain.RowID, incomingOld, incomingNew domain.Row) {
	switch {
	case isPresent(d.added, id):
		// add(r) then modify(o,n): collapses to add(n).
		d.added[id] = incomingNew
	case isPresentModified(d.modified, id):
		// modify(o1,n1) then modify(o2,n2): collapses to modify(o1,n2).
		entry := d.modified[id]
		d.modified[id] = ModifiedEntry{Old: entry.Old, New: incomingNew}
	default:
		d.track(id)
		d.modified[id] = ModifiedEntry{Old: incomingOld, New: incomingNew}
	}
}

func (d *TableDiff) mergeDelete(id domain.RowID, row domain.Row) {
	switch {
	case isPresent(d.added, id):
		// add(r) then delete: net effect is nothing happened.
		delete(d.added, id)
		d.untrack(id)
	case isPresentModified(d.modified, id):
		// modify(o1,n1) then delete: net effect is delete(o1).
		entry := d.modified[id]
		delete(d.modified, id)
		d.deleted[id] = entry.Old
	default:
		d.track(id)
		d.deleted[id] = row
	}
}

// Reverse produces the inverse diff: added and deleted swap roles,
// and each modified entry swaps its old/new pair. Applying Reverse()
// after the original restores prior state, and Reverse is its own
// inverse.
func (d *TableDiff) Reverse() *TableDiff {
	r := New()
	r.order = append(r.order, d.order...)
	for id, row := range d.added {
		r.deleted[id] = row
	}
	for id, row := range d.deleted {
		r.added[id] = row
	}
	for id, entry := range d.modified {
		r.modified[id] = ModifiedEntry{Old: entry.New, New: entry.Old}
	}
	return r
}
