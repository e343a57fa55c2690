package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaggedAllocatorRegistersAndFrees(t *testing.T) {
	manager := NewManager()
	tag := NewTag("entities")
	alloc := NewTaggedAllocator[vec3](manager, tag)

	v := alloc.Allocate()
	require.NotNil(t, v)
	require.Equal(t, 1, manager.Count())
	require.Equal(t, tag.Hash(), alloc.Tag().Hash())

	alloc.Free(v)
	require.Equal(t, 0, manager.Count())
}

func TestTaggedAllocatorDefaultsToRegistry(t *testing.T) {
	RegistryReset()
	t.Cleanup(RegistryReset)

	alloc := NewTaggedAllocator[vec3](nil, NewTag("default-registry"))
	v := alloc.Allocate()
	require.NotNil(t, v)
	require.Equal(t, 1, RegistryGet().Count())
}
