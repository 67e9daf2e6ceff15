package backingstore

import (
	"fmt"

	"github.com/kasuganosora/sqlexec/internal/domain"
)

// EncodeRow serializes row through its Encodable capability when the
// concrete type provides one, falling back to a row-id-only
// placeholder otherwise. domain.Row is opaque, so this is the only
// serialization the stores can do without schema knowledge.
func EncodeRow(row domain.Row) ([]byte, error) {
	if row == nil {
		return nil, nil
	}
	if enc, ok := row.(domain.Encodable); ok {
		return enc.Encode()
	}
	return []byte(fmt.Sprintf(`{"row_id":%d}`, row.ID())), nil
}
