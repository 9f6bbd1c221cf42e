// ABOUTME: Sentinel errors for the versioned entity store.
// ABOUTME: Callers match these with errors.Is to pick a recovery path.
package store

import "errors"

var (
	// ErrSchemaConflict means a table's stored version differs from the
	// version the code expects. Table data is never migrated in place; the
	// store refuses to open until the operator rebuilds the table.
	ErrSchemaConflict = errors.New("schema version conflict")

	// ErrConstraint means an upsert violated a constraint, typically a
	// missing foreign-key referent. It applies to that record only.
	ErrConstraint = errors.New("constraint violation")

	// ErrInvalidRecord means a record was rejected before any write was
	// attempted: unknown table or column, or a bad/missing time column.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrNotFound means a lookup matched nothing.
	ErrNotFound = errors.New("not found")
)
