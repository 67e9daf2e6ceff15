package indexstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

func TestFullTextIndexSetGetRemove(t *testing.T) {
	idx := NewFullTextIndex("ft_body")
	defer idx.Close()

	idx.Set(domain.StringKey("the quick brown fox"), 1)
	idx.Set(domain.StringKey("quick silver"), 2)

	// The exact query segments the same way it was indexed, so the
	// posting is always reachable regardless of tokenizer details.
	assert.Contains(t, idx.Get(domain.StringKey("the quick brown fox")), domain.RowID(1))
	assert.Contains(t, idx.Get(domain.StringKey("quick silver")), domain.RowID(2))

	idx.Remove(domain.StringKey("the quick brown fox"), 1)
	assert.NotContains(t, idx.Get(domain.StringKey("the quick brown fox")), domain.RowID(1))

	all := idx.GetRange(nil)
	assert.Contains(t, all, domain.RowID(2))
	assert.NotContains(t, all, domain.RowID(1))
}
