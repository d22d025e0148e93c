// Package alloc provides a fixed-capacity, thread-safe allocator of small
// integer slot indices.
//
// # Overview
//
// An Allocator owns the index space [0, Cap()). Indices are handed out by
// Alloc and returned by Release. The allocator tracks two things:
//
//   - the boundary, a high-water mark: every index below it has been
//     allocated at least once, every index at or above it is untouched
//   - the holes, released indices strictly below boundary-1
//
// # Allocation Policy
//
// Alloc reuses the smallest hole first. Only when there are no holes does it
// hand out the boundary index and advance the boundary. When the boundary
// reaches Cap() and no holes remain, Alloc reports exhaustion by returning
// ok == false. It never blocks.
//
// Release of the index just below the boundary shrinks the boundary instead
// of recording a hole, and keeps shrinking it across any run of holes it
// uncovers. The live range therefore stays as compact as the current
// occupancy allows:
//
//	a := alloc.MustNew(4)
//	a.Alloc() // 0
//	a.Alloc() // 1
//	a.Alloc() // 2
//	a.Release(1) // hole {1}, boundary 3
//	a.Release(2) // boundary trims to 1, hole 1 absorbed, boundary 1
//
// # Misuse
//
// Releasing an index that is out of range or already free is a silent
// no-op. Pass WithLogger to have such calls reported at debug level; the
// observable behaviour does not change.
//
// # Thread Safety
//
// All methods are safe for concurrent use. A single mutex guards the
// boundary and the hole set, so concurrent Alloc calls never return the same
// index and a released index is only handed out again after its Release
// returned.
//
// # Related Packages
//
//   - github.com/joshuapare/slotkit/slot/table: atomically swappable
//     shared references addressed by allocator indices
//   - github.com/joshuapare/slotkit/pkg/slotmetrics: Prometheus export of
//     allocator statistics
package alloc
