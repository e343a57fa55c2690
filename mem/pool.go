package mem

import (
	"sync"
	"unsafe"
)

const poolListEnd = -1

// PoolAllocator hands out fixed-size blocks of T from a pre-allocated
// backing array, the Go analogue of PoolAllocator.h's template<T,
// BlockCount, Alignment>. Go has no const generics, so BlockCount becomes a
// constructor argument (capacity) instead of a type parameter; Alignment is
// dropped entirely since Go's allocator already aligns every T according to
// its natural alignment and there is no placement-new equivalent to steer.
//
// Free slots are tracked with an index-linked free list (next[i] is the
// index of the next free slot, or poolListEnd), the safe-Go equivalent of
// the original's intrusive FreeNode-in-the-block trick.
type PoolAllocator[T any] struct {
	mu       sync.Mutex
	manager  *Manager
	tag      Tag
	storage  []T
	next     []int32
	freeHead int32
	live     int
}

// NewPoolAllocator constructs a PoolAllocator holding exactly capacity
// blocks. It panics if capacity <= 0, mirroring ArenaAllocator's
// invalid_argument precondition (a pool of zero blocks can never satisfy
// any Allocate call).
func NewPoolAllocator[T any](capacity int, manager *Manager, tag Tag) *PoolAllocator[T] {
	if capacity <= 0 {
		panic("mem: PoolAllocator capacity must be > 0")
	}
	if manager == nil {
		manager = RegistryGet()
	}
	p := &PoolAllocator[T]{
		manager: manager,
		tag:     tag,
		storage: make([]T, capacity),
		next:    make([]int32, capacity),
	}
	for i := 0; i < capacity; i++ {
		if i == capacity-1 {
			p.next[i] = poolListEnd
		} else {
			p.next[i] = int32(i + 1)
		}
	}
	return p
}

// Allocate reserves one block and returns a pointer to it along with its
// slot index (needed by Deallocate, Go having no pointer-to-index
// arithmetic). ok is false if the pool is exhausted.
func (p *PoolAllocator[T]) Allocate() (ptr *T, index int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freeHead == poolListEnd {
		return nil, 0, false
	}
	idx := p.freeHead
	p.freeHead = p.next[idx]
	p.live++
	ptr = &p.storage[idx]
	var zero T
	*ptr = zero
	p.manager.Register(unsafe.Pointer(ptr), uint64(unsafe.Sizeof(zero)), p.tag)
	return ptr, int(idx), true
}

// Deallocate returns the block at index to the free list.
func (p *PoolAllocator[T]) Deallocate(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.storage) {
		return
	}
	p.manager.Unregister(unsafe.Pointer(&p.storage[index]))
	p.next[int32(index)] = p.freeHead
	p.freeHead = int32(index)
	p.live--
}

// Reset returns every block to the free list, regardless of current state.
func (p *PoolAllocator[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.storage {
		p.manager.Unregister(unsafe.Pointer(&p.storage[i]))
		if i == len(p.storage)-1 {
			p.next[i] = poolListEnd
		} else {
			p.next[i] = int32(i + 1)
		}
	}
	p.freeHead = 0
	p.live = 0
}

// Capacity returns the total number of blocks the pool was built with.
func (p *PoolAllocator[T]) Capacity() int {
	return len(p.storage)
}

// Available returns the number of currently free blocks.
func (p *PoolAllocator[T]) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.storage) - p.live
}
