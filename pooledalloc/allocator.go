// Package pooledalloc is the collaborator layer from spec.md §4.3/§6: it
// rounds caller requests up to a power of two, tries the freelist first,
// falls back to a host allocator, and tracks which addresses it owns via
// a per-goroutine address→size map so Free can route a bare address back
// to the bucket it came from.
package pooledalloc

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/ringvault/freedump/freelist"
)

// HostAllocFunc must return an address to exactly count*size bytes. It
// may return 0 to signal failure; pooledalloc propagates that to the
// caller unexamined, same as spec.md §6's host_alloc contract.
type HostAllocFunc func(count, size uintptr) uintptr

// HostFreeFunc releases an address previously returned by a
// HostAllocFunc.
type HostFreeFunc func(addr uintptr)

// Allocator wraps a host allocator pair with a bucketed freelist cache.
// The zero value is not usable; construct with New.
type Allocator struct {
	fl        *freelist.FreeList
	hostAlloc HostAllocFunc
	hostFree  HostFreeFunc
	table     localTable
	log       zerolog.Logger
}

// Option configures an Allocator at construction time.
type Option func(*Allocator)

// WithLogger attaches a zerolog.Logger that receives Debug-level events
// on freelist fallbacks. The default is zerolog.Nop(): zero overhead
// when no logger is supplied.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// New constructs an Allocator with n freelist buckets (sizes 2^0..2^(n-1))
// over the given host allocator pair.
func New(n int, hostAlloc HostAllocFunc, hostFree HostFreeFunc, opts ...Option) *Allocator {
	a := &Allocator{
		fl:        freelist.New(n),
		hostAlloc: hostAlloc,
		hostFree:  hostFree,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// nextPowerOfTwo mirrors Rust's usize::next_power_of_two: 0 and 1 both
// round up to 1, and a value that would overflow the word wraps to 0 —
// the same "NOTE: in case next_power_of_2() returns 0" edge case the
// original's calloc.rs comments on.
func nextPowerOfTwo(n uintptr) uintptr {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}

// Alloc rounds count*size up to the next power of two and tries to
// recycle an address of that size before falling back to the host
// allocator. When the rounded size is eligible for the freelist (in
// range, nonzero), the returned address is recorded in the calling
// goroutine's table regardless of whether it was recycled or freshly
// host-allocated, so a later Free on the same goroutine can deposit it.
func (a *Allocator) Alloc(count, size uintptr) uintptr {
	rounded := nextPowerOfTwo(count * size)

	addr, err := a.fl.Recycle(rounded)
	switch {
	case err == nil:
		a.table.record(addr, rounded)
		return addr

	case errors.Is(err, freelist.ErrBucketEmpty):
		addr = a.hostAlloc(1, rounded)
		a.table.record(addr, rounded)
		a.log.Debug().
			Uint64("size", uint64(rounded)).
			Uint64("addr", uint64(addr)).
			Msg("pooledalloc: freelist miss, host-allocated recyclable size")
		return addr

	default:
		// ErrSizeNotPowerOfTwo (rounded overflowed to 0) or
		// ErrBucketUnavailable (rounded size has no bucket): forward the
		// caller's original request untouched, and don't track it.
		return a.hostAlloc(count, size)
	}
}

// Free looks up addr in the calling goroutine's table. An address this
// goroutine never tagged (untracked, or tagged by a different goroutine)
// goes straight to the host free. A tracked address is deposited back
// into its bucket; on ErrBucketFull the table entry is dropped and the
// host free is called instead.
func (a *Allocator) Free(addr uintptr) {
	size, ok := a.table.lookup(addr)
	if !ok {
		a.hostFree(addr)
		return
	}

	if err := a.fl.Deposit(addr, size); err != nil {
		a.table.forget(addr)
		a.hostFree(addr)
		a.log.Debug().
			Uint64("addr", uint64(addr)).
			Uint64("size", uint64(size)).
			Msg("pooledalloc: bucket full, host-freed")
		return
	}
	// Leave the table entry in place: a future recycle-hit of this same
	// address (by whichever goroutine eventually takes it) re-finds its
	// size only through the taker's own table, which is populated fresh
	// by Alloc — this entry just lets *this* goroutine re-deposit it
	// again without re-deriving the size.
}

// Clear drains every bucket of the freelist, routing each address
// through the host free function. Ownership of the underlying memory
// returns to the caller-supplied host free at this point.
func (a *Allocator) Clear() {
	freed := 0
	a.fl.Drain(func(addr uintptr, log2Size uint) {
		a.hostFree(addr)
		freed++
	})
	a.log.Debug().Int("freed", freed).Msg("pooledalloc: cleared freelist")
}
