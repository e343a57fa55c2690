package mem

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/holy-bit/SoulLib/internal/obslog"
)

// record is the manager's bookkeeping row for one live allocation.
type record struct {
	size uint64
	tag  Tag
}

// Manager is the tracked-allocation table backing MAS. All operations are
// thread-safe, serialized by a single internal mutex, mirroring
// MemoryManager.h (spec.md §4.1/§5).
type Manager struct {
	mu         sync.Mutex
	records    map[unsafe.Pointer]record
	debugMode  bool
	totalBytes uint64
	logger     *obslog.Logger
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the manager's logger (default obslog.L()).
func WithLogger(l *obslog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDebugMode sets the initial debug mode.
func WithDebugMode(enabled bool) Option {
	return func(m *Manager) { m.debugMode = enabled }
}

// NewManager constructs an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		records: make(map[unsafe.Pointer]record),
		logger:  obslog.L(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Register inserts or overwrites the record for ptr. Overwriting the same
// pointer is allowed and replaces size+tag (spec.md §4.1).
func (m *Manager) Register(ptr unsafe.Pointer, size uint64, tag Tag) {
	if ptr == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.records[ptr]; ok {
		m.totalBytes -= old.size
	}
	m.records[ptr] = record{size: size, tag: tag}
	m.totalBytes += size
}

// Unregister removes the record for ptr, if present; a no-op otherwise.
func (m *Manager) Unregister(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[ptr]; ok {
		m.totalBytes -= rec.size
		delete(m.records, ptr)
	}
}

// SizeOf returns the recorded size for ptr, or 0 if unknown.
func (m *Manager) SizeOf(ptr unsafe.Pointer) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[ptr].size
}

// TotalBytes returns the sum of all live record sizes.
func (m *Manager) TotalBytes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes
}

// Count returns the number of live records.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// BytesByTag returns the sum of record sizes whose tag hash matches tag.
func (m *Manager) BytesByTag(tag Tag) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total uint64
	for _, rec := range m.records {
		if rec.tag.hash == tag.hash {
			total += rec.size
		}
	}
	return total
}

// Snapshot produces a Statistics value, iterating records once under the
// lock and bucketing by tag hash. Per-tag order is unspecified.
func (m *Manager) Snapshot() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Statistics {
	buckets := make(map[uint32]*TagStats)
	order := make([]uint32, 0, len(buckets))
	for _, rec := range m.records {
		b, ok := buckets[rec.tag.hash]
		if !ok {
			b = &TagStats{Tag: rec.tag}
			buckets[rec.tag.hash] = b
			order = append(order, rec.tag.hash)
		}
		b.Bytes += rec.size
		b.Allocations++
	}
	tags := make([]TagStats, 0, len(order))
	for _, h := range order {
		tags = append(tags, *buckets[h])
	}
	return Statistics{
		TotalBytes:      m.totalBytes,
		AllocationCount: uint64(len(m.records)),
		Tags:            tags,
	}
}

// SetDebugMode toggles debug instrumentation: when enabled, ReportLeaks
// includes each leaked record's tag label.
func (m *Manager) SetDebugMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debugMode = enabled
}

// DebugMode reports whether debug instrumentation is enabled.
func (m *Manager) DebugMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debugMode
}

// ReportLeaks logs every remaining record, largest first, through the
// manager's logger. It never mutates the record table.
func (m *Manager) ReportLeaks() {
	m.mu.Lock()
	leaks := make([]record, 0, len(m.records))
	for _, rec := range m.records {
		leaks = append(leaks, rec)
	}
	total := m.totalBytes
	debug := m.debugMode
	m.mu.Unlock()

	sort.Slice(leaks, func(i, j int) bool { return leaks[i].size > leaks[j].size })

	for _, rec := range leaks {
		b := m.logger.Warning().Int("bytes", int(rec.size))
		if debug {
			b = b.Str("tag", rec.tag.String())
		}
		b.Log("mem: leaked allocation")
	}
	m.logger.Info().
		Int("total_bytes", int(total)).
		Int("allocation_count", len(leaks)).
		Log("mem: leak report complete")
}

// Clear discards all records without freeing any underlying memory. Test-only
// utility, per spec.md §4.1.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[unsafe.Pointer]record)
	m.totalBytes = 0
}
