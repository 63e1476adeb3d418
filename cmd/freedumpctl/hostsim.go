package main

import "sync/atomic"

// simHost is a bump allocator standing in for a real, expensive host
// calloc/free pair — freedumpctl has no actual foreign allocator to
// wrap, so it simulates one so the repl/bench/stats commands have
// something to drive pooledalloc.Allocator against.
type simHost struct {
	next atomic.Uint64
}

func newSimHost() *simHost {
	h := &simHost{}
	h.next.Store(0x10000)
	return h
}

func (h *simHost) alloc(count, size uintptr) uintptr {
	return uintptr(h.next.Add(uint64(count*size) + 0x40))
}

func (h *simHost) free(uintptr) {
	// the simulated host never reclaims; freedumpctl only cares about
	// whether an address round-trips through the freelist, not about
	// real memory.
}
