package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sqlexec/internal/domain"
	"github.com/kasuganosora/sqlexec/internal/indexstore"
	"github.com/kasuganosora/sqlexec/internal/rowcache"
)

func newTestSetup(t *testing.T) (*Journal, *indexstore.Store, *rowcache.Cache, domain.TableSchema) {
	t.Helper()
	pk := domain.IndexSchema{Name: "id", Columns: []string{"id"}, Unique: true}
	nameIdx := domain.IndexSchema{Name: "name", Columns: []string{"name"}}
	t1 := domain.NewTableSchema("T1", &pk, nameIdx)

	cache := rowcache.New()
	indices := indexstore.New()
	indices.Register("T1", pk, indexstore.KindHash)
	indices.Register("T1", nameIdx, indexstore.KindBTree)

	j := New([]domain.TableSchema{t1}, cache, indices)
	return j, indices, cache, t1
}

// Insert then rollback leaves the cache and PK index empty.
func TestS1InsertThenRollback(t *testing.T) {
	j, indices, cache, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a"), newRow(2, 2, "b")}))
	rows := j.GetTableRows("T1", nil)
	assert.Len(t, rows, 2)

	require.NoError(t, j.Rollback())
	assert.Empty(t, cache.AllRowIDs("T1"))
	assert.Empty(t, indices.Get("id").Get(domain.Int64Key(1)))
	assert.Empty(t, indices.Get("id").Get(domain.Int64Key(2)))
}

// A duplicate PK within one insert batch is rejected.
func TestS2DuplicatePKRejected(t *testing.T) {
	j, _, _, _ := newTestSetup(t)

	err := j.Insert("T1", []domain.Row{newRow(1, 1, "a"), newRow(2, 1, "b")})
	require.Error(t, err)
	jerr, ok := err.(*domain.JournalError)
	require.True(t, ok)
	assert.Equal(t, domain.Constraint, jerr.Kind)

	assert.Empty(t, j.GetTableRows("T1", nil))
}

// An insert conflicting with a previously inserted PK fails and
// the first row remains.
func TestS3ConflictingInsert(t *testing.T) {
	j, _, _, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a")}))
	err := j.Insert("T1", []domain.Row{newRow(2, 1, "b")})
	require.Error(t, err)
	jerr := err.(*domain.JournalError)
	assert.Equal(t, domain.Constraint, jerr.Kind)
	assert.Equal(t, "1", jerr.Key)
	assert.Equal(t, "T1", jerr.Table)

	rows := j.GetTableRows("T1", nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].(*row).name)
}

// An update changing a PK to collide with another existing row fails.
func TestS4UpdateChangingPKCollides(t *testing.T) {
	j, _, _, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a"), newRow(2, 2, "b")}))
	err := j.Update("T1", []domain.Row{newRow(1, 2, "a")})
	require.Error(t, err)
	jerr := err.(*domain.JournalError)
	assert.Equal(t, domain.Constraint, jerr.Kind)

	rows := j.GetTableRows("T1", []domain.RowID{1})
	assert.Equal(t, int64(1), rows[0].(*row).pk)
}

// InsertOrReplace coalesces an existing PK into a modify and adds
// a brand-new row. The existing row predates the journal, so the
// accumulated diff keeps the modify distinct from the add rather
// than collapsing them.
func TestS5InsertOrReplaceCoalesces(t *testing.T) {
	j, indices, cache, _ := newTestSetup(t)

	pre := newRow(1, 1, "a")
	cache.Set("T1", []domain.Row{pre})
	indices.Get("id").Set(domain.Int64Key(1), pre.ID())
	indices.Get("name").Set(domain.StringKey("a"), pre.ID())
	indices.GetRowIdIndex("T1").Set(domain.Int64Key(1), pre.ID())

	require.NoError(t, j.InsertOrReplace("T1", []domain.Row{newRow(0, 1, "z"), newRow(3, 3, "c")}))

	got := cache.Get("T1", []domain.RowID{1})
	require.NotNil(t, got[0])
	assert.Equal(t, "z", got[0].(*row).name)

	diff := j.GetDiff()["T1"]
	assert.Len(t, diff.Modified(), 1)
	assert.Len(t, diff.Added(), 1)
}

// Any operation on a table outside scope fails with SCOPE_ERROR.
func TestS6ScopeEnforcement(t *testing.T) {
	j, _, _, _ := newTestSetup(t)

	err := j.Insert("T2", []domain.Row{newRow(1, 1, "a")})
	require.Error(t, err)
	jerr := err.(*domain.JournalError)
	assert.Equal(t, domain.ScopeError, jerr.Kind)
}

// Insert then remove of the same row collapses the accumulated
// diff to empty and leaves no index entry.
func TestS7MergeCollapse(t *testing.T) {
	j, indices, _, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a")}))
	require.NoError(t, j.Remove("T1", []domain.Row{newRow(1, 1, "a")}))

	diff := j.GetDiff()["T1"]
	assert.True(t, diff.IsEmpty())
	assert.Empty(t, indices.Get("id").Get(domain.Int64Key(1)))
}

func TestFailedInsertLeavesStateUnchanged(t *testing.T) {
	j, _, cache, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a")}))
	before := len(cache.AllRowIDs("T1"))

	err := j.Insert("T1", []domain.Row{newRow(2, 1, "dup")})
	require.Error(t, err)
	assert.Equal(t, before, len(cache.AllRowIDs("T1")))
}

func TestDoubleCommitPanics(t *testing.T) {
	j, _, _, _ := newTestSetup(t)
	require.NoError(t, j.Commit())
	assert.Panics(t, func() { _ = j.Commit() })
}

func TestCommitThenRollbackPanics(t *testing.T) {
	j, _, _, _ := newTestSetup(t)
	require.NoError(t, j.Commit())
	assert.Panics(t, func() { _ = j.Rollback() })
}

func TestRemoveThenGetTableRows(t *testing.T) {
	j, _, _, _ := newTestSetup(t)
	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a"), newRow(2, 2, "b")}))
	require.NoError(t, j.Remove("T1", []domain.Row{newRow(1, 1, "a")}))

	rows := j.GetTableRows("T1", nil)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].(*row).pk)
}

func TestGetIndexRangeUnionsAndDedupes(t *testing.T) {
	j, _, _, _ := newTestSetup(t)
	require.NoError(t, j.Insert("T1", []domain.Row{
		newRow(1, 1, "alice"),
		newRow(2, 2, "bob"),
		newRow(3, 3, "carol"),
	}))

	nameSchema := domain.IndexSchema{Name: "name"}
	aliceKey := domain.StringKey("alice")
	bobKey := domain.StringKey("bob")
	got := j.GetIndexRange(nameSchema, []indexstore.KeyRange{
		{Min: &aliceKey, Max: &aliceKey},
		{Min: &bobKey, Max: &bobKey},
		{Min: &aliceKey, Max: &aliceKey},
	})
	assert.Len(t, got, 2)
}

// Rolling back restores the cache and index state that preceded
// every applied diff.
func TestApplyThenReverseRoundTrips(t *testing.T) {
	j, indices, cache, _ := newTestSetup(t)

	require.NoError(t, j.Insert("T1", []domain.Row{newRow(1, 1, "a")}))
	require.NoError(t, j.Update("T1", []domain.Row{newRow(1, 1, "a2")}))

	require.NoError(t, j.Rollback())
	assert.Empty(t, cache.AllRowIDs("T1"))
	assert.Empty(t, indices.Get("name").Get(domain.StringKey("a2")))
	assert.Empty(t, indices.Get("name").Get(domain.StringKey("a")))
}

func TestInsertAssignsRowIDWhenUnset(t *testing.T) {
	j, _, cache, _ := newTestSetup(t)
	r := newRow(0, 9, "fresh")
	require.NoError(t, j.Insert("T1", []domain.Row{r}))
	assert.NotEqual(t, domain.RowID(0), r.ID())
	got := cache.Get("T1", []domain.RowID{r.ID()})
	require.NotNil(t, got[0])
}
