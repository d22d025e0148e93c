package alloc

import (
	"testing"
)

// BenchmarkAlloc_ReleaseTop measures the fast path: allocate at the boundary
// and trim it straight back.
func BenchmarkAlloc_ReleaseTop(b *testing.B) {
	a := MustNew(1024)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		idx, ok := a.Alloc()
		if !ok {
			b.Fatal("unexpected exhaustion")
		}
		a.Release(idx)
	}
}

// BenchmarkAlloc_HoleReuse measures reuse of a hole far below the boundary.
func BenchmarkAlloc_HoleReuse(b *testing.B) {
	const capacity = 1 << 16
	a := MustNew(capacity)
	for range capacity {
		a.Alloc()
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		victim := (i * 7919) % (capacity - 1)
		a.Release(victim)
		if _, ok := a.Alloc(); !ok {
			b.Fatal("unexpected exhaustion")
		}
	}
}

// BenchmarkAlloc_Parallel measures contention on the bookkeeping mutex.
func BenchmarkAlloc_Parallel(b *testing.B) {
	a := MustNew(1 << 12)

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if idx, ok := a.Alloc(); ok {
				a.Release(idx)
			}
		}
	})
}
