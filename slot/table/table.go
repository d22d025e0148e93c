// Package table pairs a slot allocator with a fixed array of atomically
// swappable references.
//
// A Table hands out indices from an alloc.Allocator and stores one *T per
// index. Readers call Load without taking any lock; the returned pointer
// stays valid for as long as the reader holds it, even if the entry is
// removed and the index reused in the meantime.
//
// The intended lifecycle of an index is:
//
//	idx, ok := t.Alloc()      // reserved: entry still empty
//	err := t.Publish(idx, v)  // occupied
//	...
//	t.Remove(idx)             // entry cleared, then index released
//
// Insert combines the first two steps. If a caller reserves an index and
// never publishes, it must give the index back with Release.
//
// An index has exactly one owner between Alloc and Remove. The table does
// not arbitrate a Publish racing a Remove on the same index.
package table

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/joshuapare/slotkit/slot/alloc"
)

// entry is padded to a cache line so writers on adjacent indices do not
// contend.
type entry[T any] struct {
	p atomic.Pointer[T]
	_ cpu.CacheLinePad
}

// Table is a fixed-capacity array of shared references addressed by
// allocator indices. It is safe for concurrent use.
type Table[T any] struct {
	slots   *alloc.Allocator
	entries []entry[T]

	occupied       atomic.Int64
	publishes      atomic.Uint64
	removes        atomic.Uint64
	ignoredRemoves atomic.Uint64

	log *slog.Logger
}

// New creates a table with capacity entries.
func New[T any](capacity int, opts ...Option) (*Table[T], error) {
	cfg := config{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}

	slots, err := alloc.New(capacity, alloc.WithLogger(cfg.log))
	if err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}

	return &Table[T]{
		slots:   slots,
		entries: make([]entry[T], capacity),
		log:     cfg.log,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew[T any](capacity int, opts ...Option) *Table[T] {
	t, err := New[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Cap returns the fixed capacity.
func (t *Table[T]) Cap() int { return len(t.entries) }

// Alloc reserves an index without touching its entry. ok is false when
// every index is in use.
func (t *Table[T]) Alloc() (int, bool) { return t.slots.Alloc() }

// Release returns a reserved index that was never published. It does not
// touch the entry.
func (t *Table[T]) Release(idx int) { t.slots.Release(idx) }

// Publish stores v into the empty entry at idx, which the caller must hold
// from Alloc. Publishing to an index the allocator has not handed out
// returns ErrNotAllocated.
func (t *Table[T]) Publish(idx int, v *T) error {
	if err := t.check(idx, v); err != nil {
		return err
	}
	if !t.entries[idx].p.CompareAndSwap(nil, v) {
		return fmt.Errorf("%w: index %d", ErrOccupied, idx)
	}
	t.occupied.Add(1)
	t.publishes.Add(1)
	return nil
}

// Insert reserves an index and publishes v into it.
func (t *Table[T]) Insert(v *T) (int, error) {
	if v == nil {
		return 0, ErrNilValue
	}
	idx, ok := t.slots.Alloc()
	if !ok {
		return 0, fmt.Errorf("%w: capacity %d", ErrExhausted, t.Cap())
	}
	if err := t.Publish(idx, v); err != nil {
		// The entry was left populated by a caller that did not own idx.
		t.slots.Release(idx)
		return 0, err
	}
	return idx, nil
}

// Load returns the reference at idx, or nil if the entry is empty or idx is
// out of range.
func (t *Table[T]) Load(idx int) *T {
	if idx < 0 || idx >= len(t.entries) {
		return nil
	}
	return t.entries[idx].p.Load()
}

// Swap replaces the reference at idx with v and returns the previous one.
// It is meant for the owner of idx to update a published value in place, so
// idx must be allocated.
func (t *Table[T]) Swap(idx int, v *T) (*T, error) {
	if err := t.check(idx, v); err != nil {
		return nil, err
	}
	old := t.entries[idx].p.Swap(v)
	if old == nil {
		t.occupied.Add(1)
	}
	t.publishes.Add(1)
	return old, nil
}

// Remove clears the entry at idx and then releases the index. It returns the
// reference that was removed, or nil if idx is out of range or the entry is
// already empty.
func (t *Table[T]) Remove(idx int) *T {
	if idx < 0 || idx >= len(t.entries) {
		t.ignoreRemove("remove out of range", idx)
		return nil
	}

	e := &t.entries[idx]
	if e.p.Load() == nil {
		t.ignoreRemove("remove of empty entry", idx)
		return nil
	}

	// The entry must be empty before the index can be handed out again.
	old := e.p.Swap(nil)
	if old == nil {
		// Lost a race with another Remove; it owns the release.
		t.ignoreRemove("remove of empty entry", idx)
		return nil
	}
	t.occupied.Add(-1)
	t.removes.Add(1)
	t.slots.Release(idx)
	return old
}

// Stats returns a snapshot of the table and its allocator.
func (t *Table[T]) Stats() Stats {
	return Stats{
		Stats:          t.slots.Stats(),
		Occupied:       int(t.occupied.Load()),
		Publishes:      t.publishes.Load(),
		Removes:        t.removes.Load(),
		IgnoredRemoves: t.ignoredRemoves.Load(),
	}
}

func (t *Table[T]) ignoreRemove(msg string, idx int) {
	t.ignoredRemoves.Add(1)
	t.log.Debug(msg, "index", idx, "capacity", len(t.entries))
}

func (t *Table[T]) check(idx int, v *T) error {
	if idx < 0 || idx >= len(t.entries) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, idx, len(t.entries))
	}
	if v == nil {
		return ErrNilValue
	}
	if !t.slots.IsAllocated(idx) {
		return fmt.Errorf("%w: index %d", ErrNotAllocated, idx)
	}
	return nil
}
