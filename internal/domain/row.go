// Package domain holds the value types shared by the journal and its
// collaborators: rows, row-ids, index keys, and table schema.
package domain

import "fmt"

// RowID is a stable, 64-bit identity for a row, independent of any
// primary key the row happens to carry.
type RowID int64

// Row is an opaque record a journal mutates. Implementations come from
// the SQL-like layer above the journal; the journal only ever calls
// these three methods.
type Row interface {
	// ID returns the row's current row-id.
	ID() RowID

	// SetRowID assigns a fresh row-id. Used by insertOrReplace to
	// coalesce a new row onto an existing row-id.
	SetRowID(id RowID)

	// KeyOfIndex projects the value this row contributes to the named
	// index. Returns a zero IndexKey (IsNull() == true) when the row
	// has no value for that index.
	KeyOfIndex(name string) IndexKey
}

// Encodable is an optional capability a concrete Row implementation
// may provide so that a backing store can serialize it without
// knowing its column layout. The journal itself never calls this; it
// exists for backingstore adapters consuming GetDiff() at commit
// time.
type Encodable interface {
	Encode() ([]byte, error)
}

// IndexKeyKind tags the underlying type carried by an IndexKey.
type IndexKeyKind uint8

const (
	// KindNull marks an absent key (e.g. a column is NULL).
	KindNull IndexKeyKind = iota
	KindInt64
	KindString
	KindComposite
)

// IndexKey is a tagged variant over the column types a journal index
// can be built on: integers, strings, and ordered tuples of both
// (composite/multi-column indices).
type IndexKey struct {
	Kind      IndexKeyKind
	Int64     int64
	String    string
	Composite []IndexKey
}

// NullKey is the canonical absent key.
var NullKey = IndexKey{Kind: KindNull}

// Int64Key builds an IndexKey over an int64 column value.
func Int64Key(v int64) IndexKey { return IndexKey{Kind: KindInt64, Int64: v} }

// StringKey builds an IndexKey over a string column value.
func StringKey(v string) IndexKey { return IndexKey{Kind: KindString, String: v} }

// CompositeKey builds an ordered-tuple key from component keys, for
// multi-column primary keys and indices.
func CompositeKey(parts ...IndexKey) IndexKey {
	return IndexKey{Kind: KindComposite, Composite: parts}
}

// IsNull reports whether the key represents an absent value.
func (k IndexKey) IsNull() bool { return k.Kind == KindNull }

// Equal reports whether two keys carry the same tag and value,
// comparing composite keys element-wise.
func (k IndexKey) Equal(other IndexKey) bool {
	if k.Kind != other.Kind {
		return false
	}
	switch k.Kind {
	case KindNull:
		return true
	case KindInt64:
		return k.Int64 == other.Int64
	case KindString:
		return k.String == other.String
	case KindComposite:
		if len(k.Composite) != len(other.Composite) {
			return false
		}
		for i := range k.Composite {
			if !k.Composite[i].Equal(other.Composite[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Less orders two keys of the same kind, for range-scan indices.
// Composite keys compare lexicographically, component by component.
func (k IndexKey) Less(other IndexKey) bool {
	switch k.Kind {
	case KindInt64:
		return k.Int64 < other.Int64
	case KindString:
		return k.String < other.String
	case KindComposite:
		for i := 0; i < len(k.Composite) && i < len(other.Composite); i++ {
			if k.Composite[i].Equal(other.Composite[i]) {
				continue
			}
			return k.Composite[i].Less(other.Composite[i])
		}
		return len(k.Composite) < len(other.Composite)
	default:
		return false
	}
}

// String renders the key for error messages and log fields.
func (k IndexKey) String() string {
	switch k.Kind {
	case KindNull:
		return "<null>"
	case KindInt64:
		return fmt.Sprintf("%d", k.Int64)
	case KindString:
		return k.String
	case KindComposite:
		return fmt.Sprintf("%v", k.Composite)
	default:
		return "<invalid>"
	}
}
