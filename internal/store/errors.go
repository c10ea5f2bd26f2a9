package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions, mirrored from the
// teacher's internal/storage/sqlite/errors.go pattern of wrapping
// sql.ErrNoRows into a single package sentinel.
var (
	// ErrNotFound indicates the requested row was not present.
	ErrNotFound = errors.New("not found")
	// ErrMissingNodeRef indicates an edge referenced a node uid absent at save time.
	ErrMissingNodeRef = errors.New("missing node reference")
)

// wrapDBError wraps a database error with operation context, converting
// sql.ErrNoRows into ErrNotFound for consistent error handling upstream.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
