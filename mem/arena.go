package mem

import (
	"sync"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// ArenaAllocator is a linear bump allocator over a fixed-capacity backing
// buffer, the Go analogue of ArenaAllocator.h. Individual allocations are
// never freed; the whole arena resets at once via Reset.
type ArenaAllocator struct {
	mu      sync.Mutex
	manager *Manager
	tag     Tag
	buf     []byte
	offset  uintptr
}

// NewArenaAllocator constructs an ArenaAllocator with the given byte
// capacity. If capacity <= 0 it panics with an *AllocationError wrapping
// ErrInvalidArgument, mirroring the original's std::invalid_argument
// precondition.
func NewArenaAllocator(capacity int, manager *Manager, tag Tag) *ArenaAllocator {
	if capacity <= 0 {
		panic(&AllocationError{Op: "ArenaAllocator.New", Cause: ErrInvalidArgument})
	}
	if manager == nil {
		manager = RegistryGet()
	}
	a := &ArenaAllocator{
		manager: manager,
		tag:     tag,
		buf:     make([]byte, capacity),
	}
	a.manager.Register(unsafe.Pointer(&a.buf[0]), uint64(capacity), tag)
	return a
}

// alignUp rounds value up to the nearest multiple of alignment, mirroring
// ArenaAllocator.h's static align() helper. Generic over any unsigned
// integer type so the same formula serves both the byte-offset arithmetic
// below (uintptr) and plain capacity bookkeeping elsewhere.
func alignUp[T constraints.Unsigned](value, alignment T) T {
	return (value + (alignment - 1)) &^ (alignment - 1)
}

// Allocate reserves size bytes aligned to alignment and returns a pointer
// into the arena's backing buffer. ok is false if the arena cannot satisfy
// the request (the Go equivalent of the original's std::bad_alloc).
func (a *ArenaAllocator) Allocate(size int, alignment uintptr) (ptr unsafe.Pointer, ok bool) {
	if alignment == 0 {
		alignment = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	base := uintptr(unsafe.Pointer(&a.buf[0]))
	aligned := alignUp(base+a.offset, alignment) - base
	end := aligned + uintptr(size)
	if end > uintptr(len(a.buf)) {
		return nil, false
	}
	a.offset = end
	return unsafe.Pointer(&a.buf[aligned]), true
}

// Reset rewinds the arena to empty, invalidating every pointer previously
// returned by Allocate or Create.
func (a *ArenaAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.offset = 0
}

// Used returns the number of bytes currently reserved.
func (a *ArenaAllocator) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.offset)
}

// Remaining returns the number of bytes still available before the next
// Allocate call would fail.
func (a *ArenaAllocator) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf) - int(a.offset)
}

// Capacity returns the arena's total byte capacity.
func (a *ArenaAllocator) Capacity() int {
	return len(a.buf)
}

// ArenaCreate allocates space for a T out of arena and returns a pointer to
// a zero-valued T at that address. It is a free function rather than a
// method because Go methods cannot carry their own type parameters.
func ArenaCreate[T any](arena *ArenaAllocator) (*T, bool) {
	var zero T
	ptr, ok := arena.Allocate(int(unsafe.Sizeof(zero)), unsafe.Alignof(zero))
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}
