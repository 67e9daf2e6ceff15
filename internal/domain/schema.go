package domain

// IndexSchema describes one index declared on a table: its normalized
// name (the key into the index store and the argument to
// Row.KeyOfIndex), the columns it covers, and whether it enforces
// uniqueness.
type IndexSchema struct {
	Name    string
	Columns []string
	Unique  bool
}

// ConstraintSet groups the constraints declared on a table. Only the
// primary key is consulted by the journal; other constraint kinds
// (foreign keys, checks) belong to higher layers.
type ConstraintSet struct {
	PrimaryKey *IndexSchema
}

// TableSchema is the slice of a table's schema the journal needs:
// its name, its constraints, and the indices it maintains.
type TableSchema struct {
	Name       string
	Indices    []IndexSchema
	constraint ConstraintSet
}

// NewTableSchema builds a schema with the given name, primary key
// (nil if the table has none), and secondary indices. The primary
// key, when present, is also an index on the table and is folded
// into GetIndices() so that diff application updates it like any
// other index, without a special case.
func NewTableSchema(name string, primaryKey *IndexSchema, indices ...IndexSchema) TableSchema {
	all := indices
	if primaryKey != nil {
		all = append([]IndexSchema{*primaryKey}, indices...)
	}
	return TableSchema{
		Name:       name,
		Indices:    all,
		constraint: ConstraintSet{PrimaryKey: primaryKey},
	}
}

// GetName returns the table's name.
func (t TableSchema) GetName() string { return t.Name }

// GetConstraint returns the table's constraint set.
func (t TableSchema) GetConstraint() ConstraintSet { return t.constraint }

// GetIndices returns every index declared on the table, including the
// primary key (not including the implicit row-id index, which the
// index store always provides regardless of schema).
func (t TableSchema) GetIndices() []IndexSchema { return t.Indices }

// GetPrimaryKey returns the table's primary-key index schema, or nil
// if the table declares none.
func (c ConstraintSet) GetPrimaryKey() *IndexSchema { return c.PrimaryKey }
