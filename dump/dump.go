// Package dump implements the lock-free, fixed-capacity slot pool that
// backs a single freelist bucket.
//
// A Dump holds up to wordBits opaque addresses. Two atomic bitmaps
// coordinate producers and consumers without ever taking a lock:
//
//   - writer: bit i set means slot i is claimed by some inserter, either
//     mid-publish or already readable.
//   - reader: bit i set means slot i holds a committed, readable address.
//
// reader is always a subset of writer. A bit can be clear in reader but
// still set in writer — that's a slot a reader has taken but whose
// writer-side bookkeeping hasn't been released yet, a transient state
// that resolves before the Take (or Drain) call that produced it returns.
package dump

import (
	"errors"
	"math/bits"
	"sync/atomic"
)

// WordBits is the fixed capacity of a Dump: the native machine word's bit
// width. Every bucket in a freelist gets exactly this many slots.
const WordBits = 64

const wordBits = WordBits

var (
	// ErrFull is returned by Insert when every slot is claimed.
	ErrFull = errors.New("dump: full")
	// ErrEmpty is returned by Take when no slot is currently readable.
	ErrEmpty = errors.New("dump: empty")
)

// Dump is a fixed-capacity, lock-free store of up to wordBits addresses.
//
// The zero value is ready to use. A Dump must not be copied after first
// use.
type Dump struct {
	writer atomic.Uint64
	reader atomic.Uint64
	slots  [wordBits]uintptr
}

// Insert claims the lowest-indexed free slot, publishes addr into it, then
// advertises it to readers. It returns ErrFull if every slot is currently
// claimed; it does not retry across that boundary — only the CAS loops
// inside the claim and advertise steps retry, and only on contention.
func (d *Dump) Insert(addr uintptr) error {
	old := d.writer.Load()
	var slot int
	for {
		// lowest zero bit == trailing-ones count of old, i.e. the
		// trailing-zeros count of its complement
		slot = bits.TrailingZeros64(^old)
		if slot >= wordBits {
			return ErrFull
		}
		next := old | (uint64(1) << uint(slot))
		if d.writer.CompareAndSwap(old, next) {
			break
		}
		old = d.writer.Load()
	}

	// Publish: only the thread that claimed `slot` ever writes it until a
	// reader claims it back out of reader, so this is data-race free
	// despite the shared backing array.
	d.slots[slot] = addr

	old = d.reader.Load()
	for {
		next := old | (uint64(1) << uint(slot))
		// sync/atomic's CompareAndSwap is a full fence on every arch Go
		// targets, which is at least as strong as the release the spec
		// requires here: a Take/Drain that observes this bit set is
		// guaranteed to observe the slots[slot] write above.
		if d.reader.CompareAndSwap(old, next) {
			break
		}
		old = d.reader.Load()
	}
	return nil
}

// Take claims the lowest-indexed readable slot, reads its address, and
// releases the slot back to writers. It returns ErrEmpty if no slot is
// currently readable.
func (d *Dump) Take() (uintptr, error) {
	old := d.reader.Load()
	var slot int
	for {
		slot = bits.TrailingZeros64(old)
		if slot >= wordBits {
			return 0, ErrEmpty
		}
		next := old &^ (uint64(1) << uint(slot))
		// The CAS that clears the reader bit is the acquire the spec
		// calls for (see design notes): Go's CompareAndSwap is a full
		// fence, so the slots[slot] read below is ordered after the
		// publishing Insert's write.
		if d.reader.CompareAndSwap(old, next) {
			break
		}
		old = d.reader.Load()
	}

	addr := d.slots[slot]

	old = d.writer.Load()
	for {
		next := old &^ (uint64(1) << uint(slot))
		if d.writer.CompareAndSwap(old, next) {
			break
		}
		old = d.writer.Load()
	}
	return addr, nil
}

// Drain atomically snapshots every currently-readable slot, empties the
// pool, and invokes f once for each address that was readable at the
// linearization point of that snapshot. Order of invocation is
// unspecified.
func (d *Dump) Drain(f func(addr uintptr)) {
	old := d.reader.Load()
	for {
		if old == 0 {
			return
		}
		if d.reader.CompareAndSwap(old, 0) {
			break
		}
		old = d.reader.Load()
	}
	snapshot := old

	for b := snapshot; b != 0; b &= b - 1 {
		slot := bits.TrailingZeros64(b)
		f(d.slots[slot])
	}

	for {
		w := d.writer.Load()
		next := w &^ snapshot
		if d.writer.CompareAndSwap(w, next) {
			return
		}
	}
}

// Occupancy reports the number of slots currently readable. It is a
// point-in-time snapshot with no synchronization guarantees beyond what a
// single atomic load provides — intended for diagnostics, not control
// flow.
func (d *Dump) Occupancy() int {
	return bits.OnesCount64(d.reader.Load())
}
