package journal

import "github.com/kasuganosora/sqlexec/internal/domain"

// row is a minimal domain.Row used by this package's tests: an
// integer primary key column "id" and a string column "name".
type row struct {
	rowID domain.RowID
	pk    int64
	name  string
}

func newRow(rowID domain.RowID, pk int64, name string) *row {
	return &row{rowID: rowID, pk: pk, name: name}
}

func (r *row) ID() domain.RowID         { return r.rowID }
func (r *row) SetRowID(id domain.RowID) { r.rowID = id }

func (r *row) KeyOfIndex(name string) domain.IndexKey {
	switch name {
	case "id":
		return domain.Int64Key(r.pk)
	case "name":
		return domain.StringKey(r.name)
	default:
		return domain.NullKey
	}
}
