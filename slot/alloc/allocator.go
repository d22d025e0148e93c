package alloc

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/slotkit/internal/freeset"
)

// MaxCapacity is the largest capacity New accepts.
const MaxCapacity = 1 << 30

// Allocator hands out indices in [0, Cap()). See the package documentation
// for the allocation policy.
type Allocator struct {
	capacity int

	mu       sync.Mutex
	boundary int
	holes    *freeset.Set

	allocs    uint64
	releases  uint64
	exhausted uint64
	ignored   uint64

	log *slog.Logger
}

// New creates an allocator for capacity indices.
func New(capacity int, opts ...Option) (*Allocator, error) {
	if capacity < 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	a := &Allocator{
		capacity: capacity,
		holes:    freeset.New(capacity),
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(capacity int, opts ...Option) *Allocator {
	a, err := New(capacity, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Cap returns the fixed capacity.
func (a *Allocator) Cap() int { return a.capacity }

// Alloc returns the smallest free hole, or the boundary index if there are
// no holes. ok is false when every index is in use.
func (a *Allocator) Alloc() (idx int, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if idx, ok = a.holes.PopMin(); ok {
		a.allocs++
		return idx, true
	}
	if a.boundary < a.capacity {
		idx = a.boundary
		a.boundary++
		a.allocs++
		return idx, true
	}
	a.exhausted++
	return 0, false
}

// Release returns idx to the free pool. Releasing an index that is out of
// range or already free does nothing.
func (a *Allocator) Release(idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if idx < 0 || idx >= a.boundary {
		a.ignore("release out of range", idx)
		return
	}

	if idx == a.boundary-1 {
		a.boundary--
		for a.boundary > 0 && a.holes.Remove(a.boundary-1) {
			a.boundary--
		}
		a.releases++
		return
	}

	if !a.holes.Add(idx) {
		a.ignore("release of free index", idx)
		return
	}
	a.releases++
}

// ignore counts a no-op release. Caller holds a.mu.
func (a *Allocator) ignore(msg string, idx int) {
	a.ignored++
	a.log.Debug(msg, "index", idx, "boundary", a.boundary, "capacity", a.capacity)
}

// Boundary returns the current high-water mark.
func (a *Allocator) Boundary() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boundary
}

// Free returns the number of holes below the boundary.
func (a *Allocator) Free() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holes.Len()
}

// InUse returns the number of indices currently allocated.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.boundary - a.holes.Len()
}

// IsAllocated reports whether idx is currently handed out.
func (a *Allocator) IsAllocated(idx int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return idx >= 0 && idx < a.boundary && !a.holes.Contains(idx)
}

// Holes returns the free indices below the boundary in ascending order.
func (a *Allocator) Holes() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holes.Members()
}

// Stats returns a consistent snapshot of the allocator state.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Capacity:        a.capacity,
		Boundary:        a.boundary,
		Free:            a.holes.Len(),
		InUse:           a.boundary - a.holes.Len(),
		Allocs:          a.allocs,
		Releases:        a.releases,
		Exhausted:       a.exhausted,
		IgnoredReleases: a.ignored,
	}
}
