// Package apperr defines the error kinds shared by every cdir component.
package apperr

import "errors"

var (
	// ErrNotFound reports an unknown shortcut name or a missing record.
	ErrNotFound = errors.New("not found")
	// ErrValidation reports input rejected before any persistence attempt.
	ErrValidation = errors.New("invalid input")
	// ErrSchemaMigration reports a database that cannot be brought to the
	// expected schema version.
	ErrSchemaMigration = errors.New("schema migration failed")
	// ErrStorageIO reports an unreachable or corrupt backing store.
	ErrStorageIO = errors.New("storage failure")
)
