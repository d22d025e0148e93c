package alloc

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrent_RacingAllocs races more goroutines than there are slots.
// Exactly capacity of them must win, with distinct indices 0..capacity-1.
func TestConcurrent_RacingAllocs(t *testing.T) {
	const (
		capacity   = 64
		goroutines = 500
	)
	a := MustNew(capacity)

	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		mu        sync.Mutex
		won       []int
		exhausted atomic.Int64
	)
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			<-start
			idx, ok := a.Alloc()
			if !ok {
				exhausted.Add(1)
				return
			}
			mu.Lock()
			won = append(won, idx)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, won, capacity)
	assert.Equal(t, int64(goroutines-capacity), exhausted.Load())

	sort.Ints(won)
	for i, idx := range won {
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, uint64(goroutines-capacity), a.Stats().Exhausted)
}

// TestConcurrent_ChurnNeverDoubleAllocates has goroutines allocate, mark
// ownership, and release in a loop. Any index handed to two owners at once
// trips the ownership check.
func TestConcurrent_ChurnNeverDoubleAllocates(t *testing.T) {
	const (
		capacity   = 32
		goroutines = 16
		iterations = 2000
	)
	a := MustNew(capacity)
	owners := make([]atomic.Int32, capacity)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := range goroutines {
		go func(id int32) {
			defer wg.Done()
			held := make([]int, 0, 4)
			for i := range iterations {
				if len(held) < 3 {
					if idx, ok := a.Alloc(); ok {
						if !owners[idx].CompareAndSwap(0, id) {
							t.Errorf("index %d handed out while owned by %d", idx, owners[idx].Load())
							return
						}
						held = append(held, idx)
					}
				}
				if len(held) > 0 && i%2 == 1 {
					idx := held[0]
					held = held[1:]
					owners[idx].Store(0)
					a.Release(idx)
				}
			}
			for _, idx := range held {
				owners[idx].Store(0)
				a.Release(idx)
			}
		}(int32(g + 1))
	}
	wg.Wait()

	st := a.Stats()
	assert.Equal(t, 0, st.InUse)
	assert.Equal(t, 0, st.Boundary, "all indices released, boundary should trim to zero")
	assert.Equal(t, 0, st.Free)
	assert.Equal(t, st.Allocs, st.Releases)
}
