package freelist

import "errors"

// Error kinds returned by FreeList methods. They are distinct and
// non-overlapping: SizeNotPowerOfTwo and BucketUnavailable are permanent
// for a given call (the caller should fall back to a host allocator);
// BucketEmpty and BucketFull are transient (a later call may succeed).
// None are fatal.
var (
	// ErrSizeNotPowerOfTwo is returned when the requested size is zero or
	// has more than one bit set.
	ErrSizeNotPowerOfTwo = errors.New("freelist: size is not a power of two")
	// ErrBucketUnavailable is returned when size is a power of two but
	// larger than the largest bucket this freelist was constructed with.
	ErrBucketUnavailable = errors.New("freelist: no bucket for size")
	// ErrBucketEmpty is returned when the bucket for size holds no
	// recyclable address right now.
	ErrBucketEmpty = errors.New("freelist: bucket empty")
	// ErrBucketFull is returned when the bucket for size cannot accept
	// another address right now.
	ErrBucketFull = errors.New("freelist: bucket full")
)
