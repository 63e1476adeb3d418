package pooledalloc

import (
	"sync"

	"github.com/ringvault/freedump/internal/goroutineid"
)

// localTable is the per-goroutine address→size map from spec.md §3/§4.3:
// entries are inserted (or overwritten) when the wrapper hands out a
// recyclable address, and removed only when a bucket-full forces a host
// free. A successful deposit leaves the entry in place, and Clear does
// not touch the table. Entries are never shared between goroutines.
//
// tef-crow's LockedMap (this module's teacher for map-shaped state) puts
// a Roundabout mutex around its inner map because its map is genuinely
// read and written by many goroutines at once. Each entry here is
// touched by exactly one goroutine for its whole lifetime, so the inner
// map below needs no synchronization of its own — only the outer
// registry that hands out one entry per goroutine does, and sync.Map is
// the idiomatic stdlib tool for that lazy-create-once-per-key shape.
type localTable struct {
	registry sync.Map // goroutine id (uint64) -> *addressMap
}

// addressMap is the plain, unsynchronized map owned by a single
// goroutine.
type addressMap struct {
	sizes map[uintptr]uintptr
}

func (t *localTable) local() *addressMap {
	id := goroutineid.Current()
	if v, ok := t.registry.Load(id); ok {
		return v.(*addressMap)
	}
	m := &addressMap{sizes: make(map[uintptr]uintptr, 8)}
	actual, _ := t.registry.LoadOrStore(id, m)
	return actual.(*addressMap)
}

// record tags addr as recyclable at size, for the calling goroutine.
func (t *localTable) record(addr, size uintptr) {
	t.local().sizes[addr] = size
}

// lookup returns the recorded size for addr under the calling
// goroutine's table, if any.
func (t *localTable) lookup(addr uintptr) (uintptr, bool) {
	size, ok := t.local().sizes[addr]
	return size, ok
}

// forget removes addr from the calling goroutine's table.
func (t *localTable) forget(addr uintptr) {
	delete(t.local().sizes, addr)
}
