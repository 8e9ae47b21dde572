package dataset

import "fmt"

// MissingSourceError reports a required source table that is absent or empty
// at reconciliation time. Fatal for the reconciliation run; the refresh
// scheduler keeps the previous snapshot visible.
type MissingSourceError struct {
	Table string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("source table %q is missing or empty", e.Table)
}

// SchemaError reports a required column that is absent or mistyped on a
// source table. Fatal for the reconciliation run, same handling as
// MissingSourceError.
type SchemaError struct {
	Table  string
	Column string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("table %q: column %q: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}

func (e *SchemaError) Unwrap() error { return e.Err }
