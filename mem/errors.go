package mem

import "errors"

// ErrOutOfMemory identifies a request an allocator cannot satisfy. The
// allocators in this package do not return it: ArenaAllocator.Allocate,
// ArenaCreate and PoolAllocator.Allocate report that case through their ok
// result.
var ErrOutOfMemory = errors.New("mem: out of memory")

// ErrInvalidArgument identifies a violated constructor precondition: a
// zero-capacity ArenaAllocator panics with an *AllocationError wrapping it.
var ErrInvalidArgument = errors.New("mem: invalid argument")

// AllocationError wraps ErrOutOfMemory/ErrInvalidArgument with the
// allocator and request that failed, following the reference toolkit's
// typed-error-with-Unwrap pattern (eventloop/errors.go's TypeError,
// RangeError, TimeoutError).
type AllocationError struct {
	Op    string // e.g. "TaggedAllocator.Allocate", "ArenaAllocator.New"
	Cause error
}

func (e *AllocationError) Error() string {
	return "mem: " + e.Op + ": " + e.Cause.Error()
}

func (e *AllocationError) Unwrap() error { return e.Cause }
