package store

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrStale is returned when a guarded update matched no row because the
	// row changed underneath the caller.
	ErrStale = errors.New("store: row changed concurrently")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("store: duplicate row")
)
