package table

import "errors"

var (
	// ErrOutOfRange indicates an index outside [0, Cap()).
	ErrOutOfRange = errors.New("table: index out of range")

	// ErrOccupied indicates a publish into an entry that already holds a reference.
	ErrOccupied = errors.New("table: entry occupied")

	// ErrNotAllocated indicates a publish or swap on an index that the
	// allocator has not handed out.
	ErrNotAllocated = errors.New("table: index not allocated")

	// ErrNilValue indicates an attempt to publish a nil reference.
	ErrNilValue = errors.New("table: nil value")

	// ErrExhausted indicates that every index is in use.
	ErrExhausted = errors.New("table: exhausted")
)
