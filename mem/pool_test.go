package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type vec3 struct{ x, y, z float64 }

func TestPoolAllocatorExhaustsAtCapacity(t *testing.T) {
	manager := NewManager()
	tag := NewTag("pool")
	pool := NewPoolAllocator[vec3](4, manager, tag)

	require.Equal(t, 4, pool.Capacity())
	require.Equal(t, 4, pool.Available())

	var indices []int
	for i := 0; i < 4; i++ {
		ptr, idx, ok := pool.Allocate()
		require.True(t, ok)
		require.NotNil(t, ptr)
		indices = append(indices, idx)
	}

	_, _, ok := pool.Allocate()
	require.False(t, ok, "pool must report exhaustion once capacity is reached")
	require.Equal(t, 0, pool.Available())

	pool.Deallocate(indices[0])
	require.Equal(t, 1, pool.Available())

	ptr, _, ok := pool.Allocate()
	require.True(t, ok)
	require.NotNil(t, ptr)
}

func TestPoolAllocatorResetReclaimsAll(t *testing.T) {
	manager := NewManager()
	pool := NewPoolAllocator[vec3](2, manager, NewTag("pool-reset"))

	_, _, ok1 := pool.Allocate()
	_, _, ok2 := pool.Allocate()
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, 0, pool.Available())

	pool.Reset()
	require.Equal(t, 2, pool.Available())
}

func TestPoolAllocatorPanicsOnNonPositiveCapacity(t *testing.T) {
	require.Panics(t, func() {
		NewPoolAllocator[vec3](0, nil, NewTag("bad"))
	})
}

func TestPoolAllocatorTracksManager(t *testing.T) {
	manager := NewManager()
	tag := NewTag("tracked-pool")
	pool := NewPoolAllocator[vec3](1, manager, tag)

	_, _, ok := pool.Allocate()
	require.True(t, ok)
	require.Equal(t, 1, manager.Count())

	pool.Reset()
	require.Equal(t, 0, manager.Count())
}
