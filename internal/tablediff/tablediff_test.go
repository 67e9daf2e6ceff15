package tablediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

type testRow struct {
	id   domain.RowID
	name string
}

func (r *testRow) ID() domain.RowID      { return r.id }
func (r *testRow) SetRowID(id domain.RowID) { r.id = id }
func (r *testRow) KeyOfIndex(name string) domain.IndexKey {
	if name == "name" {
		return domain.StringKey(r.name)
	}
	return domain.Int64Key(int64(r.id))
}

func row(id int64, name string) *testRow { return &testRow{id: domain.RowID(id), name: name} }

func TestAddModifyDeleteDisjoint(t *testing.T) {
	d := New()
	d.Add(row(1, "a"))
	d.Modify(row(2, "b"), row(2, "b2"))
	d.Delete(row(3, "c"))

	require.Len(t, d.Added(), 1)
	require.Len(t, d.Modified(), 1)
	require.Len(t, d.Deleted(), 1)
}

func TestMergeAddThenDeleteCollapses(t *testing.T) {
	d := New()
	d.Add(row(1, "a"))

	other := New()
	other.Delete(row(1, "a"))

	d.Merge(other)
	assert.True(t, d.IsEmpty())
}

func TestMergeAddThenModifyCollapsesToAdd(t *testing.T) {
	d := New()
	d.Add(row(1, "a"))

	other := New()
	other.Modify(row(1, "a"), row(1, "b"))

	d.Merge(other)
	assert.Len(t, d.Added(), 1)
	assert.Equal(t, "b", d.Added()[1].(*testRow).name)
	assert.Len(t, d.Modified(), 0)
}

func TestMergeModifyThenDeleteCollapsesToDelete(t *testing.T) {
	d := New()
	d.Modify(row(1, "a"), row(1, "b"))

	other := New()
	other.Delete(row(1, "b"))

	d.Merge(other)
	assert.Len(t, d.Modified(), 0)
	assert.Len(t, d.Deleted(), 1)
	assert.Equal(t, "a", d.Deleted()[1].(*testRow).name)
}

func TestMergeModifyThenModifyCollapses(t *testing.T) {
	d := New()
	d.Modify(row(1, "a"), row(1, "b"))

	other := New()
	other.Modify(row(1, "b"), row(1, "c"))

	d.Merge(other)
	require.Len(t, d.Modified(), 1)
	entry := d.Modified()[1]
	assert.Equal(t, "a", entry.Old.(*testRow).name)
	assert.Equal(t, "c", entry.New.(*testRow).name)
}

func TestReverseIsInvolutive(t *testing.T) {
	d := New()
	d.Add(row(1, "a"))
	d.Modify(row(2, "b"), row(2, "b2"))
	d.Delete(row(3, "c"))

	rr := d.Reverse().Reverse()
	assert.Equal(t, len(d.Added()), len(rr.Added()))
	assert.Equal(t, len(d.Modified()), len(rr.Modified()))
	assert.Equal(t, len(d.Deleted()), len(rr.Deleted()))
}

func TestReverseSwapsCollections(t *testing.T) {
	d := New()
	d.Add(row(1, "a"))
	d.Delete(row(2, "b"))
	d.Modify(row(3, "c"), row(3, "c2"))

	r := d.Reverse()
	assert.Contains(t, r.Deleted(), domain.RowID(1))
	assert.Contains(t, r.Added(), domain.RowID(2))
	require.Contains(t, r.Modified(), domain.RowID(3))
	assert.Equal(t, "c2", r.Modified()[3].Old.(*testRow).name)
	assert.Equal(t, "c", r.Modified()[3].New.(*testRow).name)
}

func TestDeterministicOrder(t *testing.T) {
	d := New()
	d.Add(row(5, "a"))
	d.Add(row(1, "b"))
	d.Delete(row(3, "c"))

	assert.Equal(t, []domain.RowID{5, 1, 3}, d.Order())
}
