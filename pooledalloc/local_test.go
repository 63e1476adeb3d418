package pooledalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalTableIsScopedPerGoroutine(t *testing.T) {
	var table localTable

	table.record(0xAA, 16)
	size, ok := table.lookup(0xAA)
	require.True(t, ok)
	require.Equal(t, uintptr(16), size)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := table.lookup(0xAA)
		require.False(t, ok, "another goroutine must not see this goroutine's entry")
	}()
	wg.Wait()

	table.forget(0xAA)
	_, ok = table.lookup(0xAA)
	require.False(t, ok)
}

func TestLocalTableConcurrentGoroutinesDontCollide(t *testing.T) {
	var table localTable
	var wg sync.WaitGroup
	const n = 32

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := uintptr(i + 1)
			table.record(addr, addr*2)
			size, ok := table.lookup(addr)
			require.True(t, ok)
			require.Equal(t, addr*2, size)
		}(i)
	}
	wg.Wait()
}
