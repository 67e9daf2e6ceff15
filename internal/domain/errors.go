package domain

import "fmt"

// ErrorKind tags the class of failure a JournalError carries, per the
// error taxonomy: a table outside the journal's scope, or a
// primary-key violation.
type ErrorKind string

const (
	ScopeError ErrorKind = "SCOPE_ERROR"
	Constraint ErrorKind = "CONSTRAINT"
)

// JournalError is the error type every journal operation returns on
// validation failure. Table and Key are populated for CONSTRAINT
// errors that concern a specific colliding key.
type JournalError struct {
	Kind    ErrorKind
	Message string
	Table   string
	Key     string
}

func (e *JournalError) Error() string {
	if e.Table != "" && e.Key != "" {
		return fmt.Sprintf("%s: %s (table=%s key=%s)", e.Kind, e.Message, e.Table, e.Key)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Kind, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewScopeError reports that table is not part of the journal's scope.
func NewScopeError(table string) *JournalError {
	return &JournalError{
		Kind:    ScopeError,
		Message: fmt.Sprintf("table %q is not in journal scope", table),
		Table:   table,
	}
}

// NewDuplicatePKError reports two rows within one insert batch sharing
// a primary key.
func NewDuplicatePKError(table, key string) *JournalError {
	return &JournalError{
		Kind:    Constraint,
		Message: fmt.Sprintf("duplicate primary key %s within insert batch", key),
		Table:   table,
		Key:     key,
	}
}

// NewExistingPKError reports a primary key already visible in the
// transactional view.
func NewExistingPKError(table, key string) *JournalError {
	return &JournalError{
		Kind:    Constraint,
		Message: fmt.Sprintf("primary key %s already exists", key),
		Table:   table,
		Key:     key,
	}
}

// NewPKReassignmentError reports that an update's new primary key
// would collide with an existing row, or that more than one row in
// the batch reassigns its primary key.
func NewPKReassignmentError(table, key string) *JournalError {
	return &JournalError{
		Kind:    Constraint,
		Message: fmt.Sprintf("primary key reassignment to %s would collide", key),
		Table:   table,
		Key:     key,
	}
}
