package graphydb

import (
	"errors"
	"fmt"

	"github.com/orneryd/graphydb/internal/store"
)

// Kind enumerates the error categories spec.md §7 exposes to callers.
type Kind int

const (
	// PatternError covers a malformed chain token, a duplicate alias, or a
	// projection alias with no matching parameter.
	PatternError Kind = iota
	// MissingNodeRef: an edge referenced a non-existent endpoint at save.
	MissingNodeRef
	// StillConnected: a node delete was refused because incident edges
	// remain and disconnect was not requested.
	StillConnected
	// UnknownUndoAction: a journal record lacks both + and -, or undo's
	// inverse targeted a uid no longer present.
	UnknownUndoAction
	// InvalidKind: a node or edge was created without a kind.
	InvalidKind
)

func (k Kind) String() string {
	switch k {
	case PatternError:
		return "PatternError"
	case MissingNodeRef:
		return "MissingNodeRef"
	case StillConnected:
		return "StillConnected"
	case UnknownUndoAction:
		return "UnknownUndoAction"
	case InvalidKind:
		return "InvalidKind"
	default:
		return "Unknown"
	}
}

// Error is the single exported error category graphydb raises, wrapping a
// Kind and an underlying cause (spec.md §7 "a single error category is
// exposed").
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// Is reports whether err is a graphydb.Error of kind k, matching the way
// internal/store's wrapDBError-then-errors.Is sentinel pattern lets callers
// check error category without a type switch.
func Is(err error, k Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == k
	}
	return false
}

// isMissingNodeRef reports whether err is (or wraps) store's sentinel for a
// dangling edge endpoint, so Edge.Save can re-wrap it as graphydb.Error.
func isMissingNodeRef(err error) bool {
	return errors.Is(err, store.ErrMissingNodeRef)
}
