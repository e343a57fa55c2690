package mem

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/holy-bit/SoulLib/internal/obslog"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterUnregisterTracksTotals(t *testing.T) {
	m := NewManager()
	audio := NewTag("audio")

	a := make([]byte, 128)
	m.Register(unsafe.Pointer(&a[0]), 128, audio)
	require.EqualValues(t, 128, m.TotalBytes())
	require.Equal(t, 1, m.Count())

	b := make([]byte, 256)
	render := NewTag("render")
	m.Register(unsafe.Pointer(&b[0]), 256, render)
	require.EqualValues(t, 384, m.TotalBytes())
	require.Equal(t, 2, m.Count())

	m.Unregister(unsafe.Pointer(&a[0]))
	require.EqualValues(t, 256, m.TotalBytes())
	require.Equal(t, 1, m.Count())
}

func TestManagerRegisterOverwriteReplacesSize(t *testing.T) {
	m := NewManager()
	tag := NewTag("scratch")
	buf := make([]byte, 64)
	ptr := unsafe.Pointer(&buf[0])

	m.Register(ptr, 64, tag)
	m.Register(ptr, 32, tag)

	require.EqualValues(t, 32, m.TotalBytes())
	require.Equal(t, 1, m.Count())
}

func TestManagerBytesByTag(t *testing.T) {
	m := NewManager()
	audio := NewTag("audio")
	render := NewTag("render")

	a := make([]byte, 10)
	b := make([]byte, 20)
	c := make([]byte, 30)
	m.Register(unsafe.Pointer(&a[0]), 10, audio)
	m.Register(unsafe.Pointer(&b[0]), 20, audio)
	m.Register(unsafe.Pointer(&c[0]), 30, render)

	require.EqualValues(t, 30, m.BytesByTag(audio))
	require.EqualValues(t, 30, m.BytesByTag(render))
}

func TestManagerSnapshotAggregatesPerTag(t *testing.T) {
	m := NewManager()
	audio := NewTag("audio")
	render := NewTag("render")

	a := make([]byte, 10)
	b := make([]byte, 20)
	c := make([]byte, 5)
	m.Register(unsafe.Pointer(&a[0]), 10, audio)
	m.Register(unsafe.Pointer(&b[0]), 20, audio)
	m.Register(unsafe.Pointer(&c[0]), 5, render)

	snap := m.Snapshot()
	require.EqualValues(t, 35, snap.TotalBytes)
	require.EqualValues(t, 3, snap.AllocationCount)
	require.Len(t, snap.Tags, 2)

	byHash := map[uint32]TagStats{}
	for _, ts := range snap.Tags {
		byHash[ts.Tag.Hash()] = ts
	}
	require.EqualValues(t, 30, byHash[audio.Hash()].Bytes)
	require.EqualValues(t, 2, byHash[audio.Hash()].Allocations)
	require.EqualValues(t, 5, byHash[render.Hash()].Bytes)
	require.EqualValues(t, 1, byHash[render.Hash()].Allocations)
}

func TestManagerClearResetsState(t *testing.T) {
	m := NewManager()
	tag := NewTag("x")
	buf := make([]byte, 8)
	m.Register(unsafe.Pointer(&buf[0]), 8, tag)
	require.Equal(t, 1, m.Count())

	m.Clear()
	require.Equal(t, 0, m.Count())
	require.EqualValues(t, 0, m.TotalBytes())
}

func TestManagerConcurrentRegisterUnregister(t *testing.T) {
	m := NewManager()
	tag := NewTag("concurrent")
	const n = 200

	bufs := make([][]byte, n)
	for i := range bufs {
		bufs[i] = make([]byte, 16)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m.Register(unsafe.Pointer(&bufs[i][0]), 16, tag)
		}(i)
	}
	wg.Wait()

	require.Equal(t, n, m.Count())
	require.EqualValues(t, n*16, m.TotalBytes())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			m.Unregister(unsafe.Pointer(&bufs[i][0]))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 0, m.Count())
	require.EqualValues(t, 0, m.TotalBytes())
}

func TestManagerReportLeaksDoesNotMutate(t *testing.T) {
	m := NewManager(WithDebugMode(true), WithLogger(obslog.Noop()))
	tag := NewTag("leaky")
	buf := make([]byte, 40)
	m.Register(unsafe.Pointer(&buf[0]), 40, tag)

	m.ReportLeaks()

	require.Equal(t, 1, m.Count())
	require.EqualValues(t, 40, m.TotalBytes())
}
