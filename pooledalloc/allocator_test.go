package pooledalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// simHost is a trivial bump allocator standing in for a real host
// calloc/free pair in tests: distinct addresses, free no-ops beyond
// bookkeeping for assertions.
type simHost struct {
	mu     sync.Mutex
	next   uintptr
	allocs []call
	frees  []uintptr
}

type call struct {
	count, size uintptr
}

func newSimHost() *simHost {
	return &simHost{next: 0x1000}
}

func (h *simHost) alloc(count, size uintptr) uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allocs = append(h.allocs, call{count, size})
	addr := h.next
	h.next += 0x100
	return addr
}

func (h *simHost) free(addr uintptr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frees = append(h.frees, addr)
}

func TestWrapperFallbackAndRecycle(t *testing.T) {
	host := newSimHost()
	a := New(16, host.alloc, host.free)

	addr := a.Alloc(1, 1000)
	require.Len(t, host.allocs, 1)
	require.Equal(t, call{1, 1024}, host.allocs[0])

	a.Free(addr)
	require.Empty(t, host.frees, "recyclable free should not reach the host")

	addr2 := a.Alloc(1, 1000)
	require.Equal(t, addr, addr2)
	require.Len(t, host.allocs, 1, "second alloc should have recycled, not called host again")
}

func TestWrapperIneligibleSizePassesThrough(t *testing.T) {
	host := newSimHost()
	a := New(4, host.alloc, host.free) // buckets only cover sizes 1..8

	addr := a.Alloc(3, 10) // rounds to 32, out of range
	require.Len(t, host.allocs, 1)
	require.Equal(t, call{3, 10}, host.allocs[0], "ineligible size forwards original args")

	a.Free(addr)
	require.Equal(t, []uintptr{addr}, host.frees, "untracked address goes straight to host free")
}

func TestWrapperCrossGoroutineFreeBypassesFreelist(t *testing.T) {
	host := newSimHost()
	a := New(16, host.alloc, host.free)

	addrCh := make(chan uintptr)
	go func() {
		addrCh <- a.Alloc(1, 64)
	}()
	addr := <-addrCh

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Free(addr) // different goroutine: no record of addr in its table
	}()
	wg.Wait()

	require.Equal(t, []uintptr{addr}, host.frees)
	require.Equal(t, make([]int, 16), a.fl.Occupancy())
}

func TestWrapperClearRoutesThroughHostFree(t *testing.T) {
	host := newSimHost()
	a := New(8, host.alloc, host.free)

	a1 := a.Alloc(1, 1)
	a2 := a.Alloc(1, 2)
	a.Free(a1)
	a.Free(a2)

	a.Clear()
	require.ElementsMatch(t, []uintptr{a1, a2}, host.frees)

	for _, size := range []uintptr{1, 2} {
		_, err := a.fl.Recycle(size)
		require.Error(t, err)
	}
}

func TestWrapperBucketFullFallsBackToHostFree(t *testing.T) {
	host := newSimHost()
	a := New(1, host.alloc, host.free) // one bucket, size 1, capacity 64

	var addrs []uintptr
	for i := 0; i < 65; i++ {
		addrs = append(addrs, a.Alloc(1, 1)) // all 65 miss: bucket starts empty
	}
	require.Len(t, host.allocs, 65)

	for _, addr := range addrs[:64] {
		a.Free(addr) // fills the bucket to capacity
	}
	require.Empty(t, host.frees)

	a.Free(addrs[64]) // bucket is full: this one must fall back to host free
	require.Equal(t, []uintptr{addrs[64]}, host.frees)
}
