package list

import (
	"errors"
)

// Note that the cursor list is not thread safe.
// The values returned by navigation are copies. The element they came from
// is only reachable again through Set or Delete, which are keyed off the
// cursor state instead of a reference.

var (
	ErrCursorListEndOfList             = errors.New("[cursor-list] no element in the requested direction")
	ErrCursorListNotFound              = errors.New("[cursor-list] value not found")
	ErrCursorListPreconditionViolation = errors.New("[cursor-list] set or delete requires an immediately preceding successful move")
	ErrCursorListCorrupted             = errors.New("[cursor-list] structure corrupted")
)

// CursorMove records the direction of the last successful navigation.
// Only a non-none move allows one Set or Delete.
type CursorMove uint8

const (
	MoveNone CursorMove = iota
	MoveForward
	MoveBackward
)

func (m CursorMove) String() string {
	switch m {
	case MoveForward:
		return "forward"
	case MoveBackward:
		return "backward"
	case MoveNone:
		fallthrough
	default:
	}
	return "none"
}

// CursorList is a doubly linked list of int values with an embedded cursor.
// The cursor sits in the gap between two elements, or at either end.
type CursorList interface {
	// Len returns the number of elements.
	Len() int
	// LastMove reports the move tag without clearing it.
	LastMove() CursorMove
	// Reset places the cursor before the first element.
	Reset()
	// InsertBefore inserts v at the cursor gap. The cursor ends up
	// right after the new element.
	InsertBefore(v int)
	// HasNext reports whether an element follows the cursor.
	// It clears the move tag, so a pending Set or Delete is lost.
	HasNext() bool
	// HasPrevious reports whether an element precedes the cursor.
	// It clears the move tag, so a pending Set or Delete is lost.
	HasPrevious() bool
	// Next steps over the element after the cursor and returns its value.
	Next() (int, error)
	// Previous steps back over the element before the cursor and returns its value.
	Previous() (int, error)
	// FindNext scans forward from the cursor for v and stops right after it.
	// The cursor does not move when v is absent.
	FindNext(v int) (int, error)
	// FindPrevious scans backward from the cursor for v and stops right before it.
	// The cursor does not move when v is absent.
	FindPrevious(v int) (int, error)
	// Delete removes the element returned by the last successful move.
	Delete() error
	// Set overwrites the element returned by the last successful move.
	Set(v int) error
	// Snapshot copies the values and the cursor gap without mutating anything.
	Snapshot() CursorSnapshot
	// Validate walks the list in both directions and checks the links.
	Validate() error
	// Destroy releases all elements. The list must not be used afterward.
	Destroy()
}
