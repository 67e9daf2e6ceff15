package rowcache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

type testRow struct {
	id domain.RowID
}

func (r *testRow) ID() domain.RowID         { return r.id }
func (r *testRow) SetRowID(id domain.RowID) { r.id = id }
func (r *testRow) KeyOfIndex(string) domain.IndexKey { return domain.NullKey }

func TestSetGetRemove(t *testing.T) {
	c := New()
	c.Set("t1", []domain.Row{&testRow{id: 1}, &testRow{id: 2}})

	got := c.Get("t1", []domain.RowID{2, 1, 3})
	assert.Equal(t, domain.RowID(2), got[0].ID())
	assert.Equal(t, domain.RowID(1), got[1].ID())
	assert.Nil(t, got[2])

	c.Remove("t1", []domain.RowID{1})
	got = c.Get("t1", []domain.RowID{1, 2})
	assert.Nil(t, got[0])
	assert.Equal(t, domain.RowID(2), got[1].ID())
}

func TestGetUnknownTable(t *testing.T) {
	c := New()
	got := c.Get("missing", []domain.RowID{1})
	assert.Len(t, got, 1)
	assert.Nil(t, got[0])
}

func TestNextRowIDMonotonic(t *testing.T) {
	c := New()
	assert.Equal(t, domain.RowID(1), c.NextRowID("t1"))
	assert.Equal(t, domain.RowID(2), c.NextRowID("t1"))
	assert.Equal(t, domain.RowID(1), c.NextRowID("t2"))
}
