// Package freelist buckets a fixed-capacity, lock-free slot pool
// (dump.Dump) by power-of-two size. Bucket i holds addresses of exactly
// 2^i bytes, for i in [0, N).
package freelist

import (
	"math/bits"

	"github.com/ringvault/freedump/dump"
)

// FreeList routes (address, size) pairs to a bucket indexed by
// log2(size). It rejects non-power-of-two sizes and sizes outside the
// range the freelist was constructed with.
//
// All methods are safe to call from any number of goroutines
// concurrently; a FreeList never locks, delegating all synchronization
// to the per-bucket dump.Dump.
type FreeList struct {
	buckets []dump.Dump
}

// New constructs a freelist with n buckets, for sizes 2^0 .. 2^(n-1). n
// must be in [1, dump.WordBits]; New panics outside that range.
//
// The source this is ported from generates a distinct const-generic
// constructor per N in {1..20} because its const-evaluation facility
// forbids runtime loops in const contexts. Go has no such restriction,
// so a single runtime-parameterized constructor replaces that family
// without any change in observable behavior.
func New(n int) *FreeList {
	if n < 1 || n > dump.WordBits {
		panic("freelist: n out of range")
	}
	return &FreeList{buckets: make([]dump.Dump, n)}
}

// N returns the number of buckets this freelist was constructed with.
func (f *FreeList) N() int {
	return len(f.buckets)
}

// route validates that size is a power of two and returns its bucket
// index, or an error classifying why it can't be routed.
func (f *FreeList) route(size uintptr) (int, error) {
	if size == 0 || size&(size-1) != 0 {
		return 0, ErrSizeNotPowerOfTwo
	}
	power := bits.TrailingZeros64(uint64(size))
	if power >= len(f.buckets) {
		return 0, ErrBucketUnavailable
	}
	return power, nil
}

// Recycle returns a previously deposited address of the given size, or
// ErrBucketEmpty if none is available right now. size must be a power of
// two within the freelist's bucket range, or Recycle returns
// ErrSizeNotPowerOfTwo / ErrBucketUnavailable.
func (f *FreeList) Recycle(size uintptr) (uintptr, error) {
	power, err := f.route(size)
	if err != nil {
		return 0, err
	}
	addr, err := f.buckets[power].Take()
	if err != nil {
		return 0, ErrBucketEmpty
	}
	return addr, nil
}

// Deposit places addr into the bucket for size, for later Recycle calls.
// It returns ErrBucketFull if that bucket is at capacity right now.
func (f *FreeList) Deposit(addr uintptr, size uintptr) error {
	power, err := f.route(size)
	if err != nil {
		return err
	}
	if err := f.buckets[power].Insert(addr); err != nil {
		return ErrBucketFull
	}
	return nil
}

// Drain empties every bucket, invoking cb once per address with the
// log2 of the bucket size it came from.
func (f *FreeList) Drain(cb func(addr uintptr, log2Size uint)) {
	for i := range f.buckets {
		power := uint(i)
		f.buckets[i].Drain(func(addr uintptr) {
			cb(addr, power)
		})
	}
}

// DrainBucket empties only the bucket for size, invoking cb once per
// address found there.
func (f *FreeList) DrainBucket(size uintptr, cb func(addr uintptr)) error {
	power, err := f.route(size)
	if err != nil {
		return err
	}
	f.buckets[power].Drain(cb)
	return nil
}

// Occupancy reports, per bucket, how many addresses are currently
// recyclable. Intended for diagnostics: it is a point-in-time snapshot,
// not a stable count, and the freelist does not act on it (no eviction
// or promotion policy reads this).
func (f *FreeList) Occupancy() []int {
	out := make([]int, len(f.buckets))
	for i := range f.buckets {
		out[i] = f.buckets[i].Occupancy()
	}
	return out
}
