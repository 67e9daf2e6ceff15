package journal

import (
	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/tablediff"
)

// applyTableDiff updates every index on schema (including the
// implicit row-id index), then the row cache, then merges diff into
// the journal's accumulated per-table diff. Cache and index
// update order is interchangeable; both must complete before control
// returns to the caller.
func (j *Journal) applyTableDiff(schema domain.TableSchema, diff *tablediff.TableDiff) {
	j.updateTableIndices(schema, diff)
	j.updateCache(schema.GetName(), diff)

	acc, ok := j.tableDiffs[schema.GetName()]
	if !ok {
		acc = tablediff.New()
		j.tableDiffs[schema.GetName()] = acc
	}
	acc.Merge(diff)
}

// applyReverseOnly applies a reverse diff to indices and cache (as
// rollback does for each accumulated table diff) without
// re-accumulating it into tableDiffs: rollback discards the
// journal's accumulated state entirely rather than recording that it
// undid itself.
func (j *Journal) applyReverseOnly(schema domain.TableSchema, reverse *tablediff.TableDiff) {
	j.updateTableIndices(schema, reverse)
	j.updateCache(schema.GetName(), reverse)
}

// updateTableIndices walks every row-id touched by diff and, for each
// index on the table plus the implicit row-id index, removes the
// stale (key, row-id) association and inserts the current one
// whenever the projected key actually changed.
func (j *Journal) updateTableIndices(schema domain.TableSchema, diff *tablediff.TableDiff) {
	rowIDIndex := j.indices.GetRowIdIndex(schema.GetName())

	type indexRef struct {
		name string
		idx  interface {
			Get(domain.IndexKey) []domain.RowID
			Set(domain.IndexKey, domain.RowID)
			Remove(domain.IndexKey, domain.RowID)
		}
	}
	var secondary []indexRef
	for _, is := range schema.GetIndices() {
		if idx := j.indices.Get(is.Name); idx != nil {
			secondary = append(secondary, indexRef{name: is.Name, idx: idx})
		}
	}

	added := diff.Added()
	deleted := diff.Deleted()
	modified := diff.Modified()

	for _, id := range diff.Order() {
		var nowImage, thenImage domain.Row
		if row, ok := added[id]; ok {
			nowImage = row
		} else if entry, ok := modified[id]; ok {
			nowImage, thenImage = entry.New, entry.Old
		} else if row, ok := deleted[id]; ok {
			thenImage = row
		}

		nowPresent := nowImage != nil
		thenPresent := thenImage != nil
		if nowPresent != thenPresent {
			key := domain.Int64Key(int64(id))
			if thenPresent {
				rowIDIndex.Remove(key, id)
			}
			if nowPresent {
				rowIDIndex.Set(key, id)
			}
		}

		for _, ref := range secondary {
			keyNow, keyThen := domain.NullKey, domain.NullKey
			if nowImage != nil {
				keyNow = nowImage.KeyOfIndex(ref.name)
			}
			if thenImage != nil {
				keyThen = thenImage.KeyOfIndex(ref.name)
			}
			if keyNow.Equal(keyThen) {
				continue
			}
			if !keyThen.IsNull() {
				ref.idx.Remove(keyThen, id)
			}
			if !keyNow.IsNull() {
				ref.idx.Set(keyNow, id)
			}
		}
	}
}

// updateCache removes cache entries for every deleted row-id and
// inserts/overwrites entries for added rows and the new images of
// modified rows.
func (j *Journal) updateCache(table string, diff *tablediff.TableDiff) {
	deleted := diff.Deleted()
	if len(deleted) > 0 {
		ids := make([]domain.RowID, 0, len(deleted))
		for id := range deleted {
			ids = append(ids, id)
		}
		j.cache.Remove(table, ids)
	}

	var setRows []domain.Row
	for _, row := range diff.Added() {
		setRows = append(setRows, row)
	}
	for _, entry := range diff.Modified() {
		setRows = append(setRows, entry.New)
	}
	if len(setRows) > 0 {
		j.cache.Set(table, setRows)
	}
}
