// Package freeset provides an ordered set of small non-negative integers
// backed by a fixed-size bitset.
//
// It is used by the slot allocator to track released indices below the
// high-water mark. The set supports smallest-member extraction and O(1)
// membership tests, which is all the allocator needs.
//
// Set is not thread-safe; callers synchronize externally.
package freeset

import "github.com/bits-and-blooms/bitset"

// Set is an ordered set of integers in [0, Size()).
type Set struct {
	bits *bitset.BitSet
	size int
	n    int

	// lo is a lower bound on the smallest member. Every member is >= lo.
	lo int
}

// New returns an empty set able to hold members in [0, size).
func New(size int) *Set {
	if size < 0 {
		size = 0
	}
	return &Set{
		bits: bitset.New(uint(size)),
		size: size,
		lo:   size,
	}
}

// Size returns the exclusive upper bound on members.
func (s *Set) Size() int { return s.size }

// Len returns the number of members.
func (s *Set) Len() int { return s.n }

// Contains reports whether i is a member.
func (s *Set) Contains(i int) bool {
	if i < 0 || i >= s.size {
		return false
	}
	return s.bits.Test(uint(i))
}

// Add inserts i. It reports whether i was newly added; out-of-range values
// and existing members are ignored.
func (s *Set) Add(i int) bool {
	if i < 0 || i >= s.size || s.bits.Test(uint(i)) {
		return false
	}
	s.bits.Set(uint(i))
	s.n++
	if i < s.lo {
		s.lo = i
	}
	return true
}

// Remove deletes i and reports whether it was a member.
func (s *Set) Remove(i int) bool {
	if !s.Contains(i) {
		return false
	}
	s.bits.Clear(uint(i))
	s.n--
	if s.n == 0 {
		s.lo = s.size
	}
	return true
}

// Min returns the smallest member without removing it.
func (s *Set) Min() (int, bool) {
	if s.n == 0 {
		return 0, false
	}
	i, ok := s.bits.NextSet(uint(s.lo))
	if !ok {
		// n > 0 guarantees a member at or above lo.
		panic("freeset: member count out of sync with bitset")
	}
	s.lo = int(i)
	return int(i), true
}

// PopMin removes and returns the smallest member.
func (s *Set) PopMin() (int, bool) {
	i, ok := s.Min()
	if !ok {
		return 0, false
	}
	s.Remove(i)
	return i, true
}

// Members returns all members in ascending order.
func (s *Set) Members() []int {
	out := make([]int, 0, s.n)
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}
