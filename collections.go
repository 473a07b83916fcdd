package parcon

import (
	"time"
	"unsafe"

	"github.com/parcon/parcon/table"
)

// Set wraps table.Set with logging, metrics, and resource accounting.
type Set[K comparable] struct {
	*table.Set[K]
	opts options
	mem  int64
}

// NewSet creates a fixed-capacity lock-free hash set.
func NewSet[K comparable](capacity int, optFns ...Option) (*Set[K], error) {
	o := applyOptions(optFns)

	mem := setBytes[K](capacity)
	if !o.controller.TryAcquireMemory(mem) {
		return nil, ErrMemoryLimit
	}

	inner, err := table.NewSet[K](capacity, tableOptions[K](o)...)
	if err != nil {
		o.controller.ReleaseMemory(mem)
		return nil, translateError(err)
	}

	o.logger = o.logger.WithContainer("set", capacity)
	return &Set[K]{Set: inner, opts: o, mem: mem}, nil
}

// Insert adds key if absent. Returns true iff this caller introduced
// the entry; an existing key yields (false, ErrDuplicate).
func (s *Set[K]) Insert(key K) (bool, error) {
	start := time.Now()
	inserted, err := s.Set.Insert(key)
	err = translateError(err)
	s.opts.metricsCollector.RecordInsert(time.Since(start), err)
	s.opts.logger.LogInsert(inserted, err)
	return inserted, err
}

// Contains reports whether key is present.
func (s *Set[K]) Contains(key K) bool {
	start := time.Now()
	hit := s.Set.Contains(key)
	s.opts.metricsCollector.RecordFind(hit, time.Since(start))
	return hit
}

// Erase removes key. Returns true iff this caller removed it.
func (s *Set[K]) Erase(key K) bool {
	start := time.Now()
	erased := s.Set.Erase(key)
	s.opts.metricsCollector.RecordErase(erased, time.Since(start))
	s.opts.logger.LogErase(erased)
	return erased
}

// Close releases the backing storage and refunds the memory reservation.
func (s *Set[K]) Close() error {
	err := s.Set.Close()
	s.opts.controller.ReleaseMemory(s.mem)
	return err
}

// Map wraps table.Map with logging, metrics, and resource accounting.
type Map[K comparable, V any] struct {
	*table.Map[K, V]
	opts options
	mem  int64
}

// NewMap creates a fixed-capacity lock-free hash map.
func NewMap[K comparable, V any](capacity int, optFns ...Option) (*Map[K, V], error) {
	o := applyOptions(optFns)

	mem := mapBytes[K, V](capacity)
	if !o.controller.TryAcquireMemory(mem) {
		return nil, ErrMemoryLimit
	}

	inner, err := table.NewMap[K, V](capacity, tableOptions[K](o)...)
	if err != nil {
		o.controller.ReleaseMemory(mem)
		return nil, translateError(err)
	}

	o.logger = o.logger.WithContainer("map", capacity)
	return &Map[K, V]{Map: inner, opts: o, mem: mem}, nil
}

// Insert adds (key, val) if key is absent. Returns true iff this caller
// introduced the entry; an existing key yields (false, ErrDuplicate)
// with no mutation.
func (m *Map[K, V]) Insert(key K, val V) (bool, error) {
	start := time.Now()
	inserted, err := m.Map.Insert(key, val)
	err = translateError(err)
	m.opts.metricsCollector.RecordInsert(time.Since(start), err)
	m.opts.logger.LogInsert(inserted, err)
	return inserted, err
}

// Find returns the value stored for key.
func (m *Map[K, V]) Find(key K) (V, bool) {
	start := time.Now()
	v, hit := m.Map.Find(key)
	m.opts.metricsCollector.RecordFind(hit, time.Since(start))
	return v, hit
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	start := time.Now()
	hit := m.Map.Contains(key)
	m.opts.metricsCollector.RecordFind(hit, time.Since(start))
	return hit
}

// Erase removes key. Returns true iff this caller removed it.
func (m *Map[K, V]) Erase(key K) bool {
	start := time.Now()
	erased := m.Map.Erase(key)
	m.opts.metricsCollector.RecordErase(erased, time.Since(start))
	m.opts.logger.LogErase(erased)
	return erased
}

// Close releases the backing storage and refunds the memory reservation.
func (m *Map[K, V]) Close() error {
	err := m.Map.Close()
	m.opts.controller.ReleaseMemory(m.mem)
	return err
}

func tableOptions[K comparable](o options) []table.Option[K] {
	var opts []table.Option[K]
	if o.offHeap {
		opts = append(opts, table.WithOffHeapBits[K]())
	}
	return opts
}

// setBytes approximates the backing storage of a set: the key slab plus
// the occupancy, published, and grave bit arrays.
func setBytes[K comparable](capacity int) int64 {
	if capacity <= 0 {
		return 0
	}
	var k K
	return int64(capacity)*int64(unsafe.Sizeof(k)) + 3*wordBytes(capacity)
}

// mapBytes adds the value slab on top of setBytes.
func mapBytes[K comparable, V any](capacity int) int64 {
	if capacity <= 0 {
		return 0
	}
	var v V
	return setBytes[K](capacity) + int64(capacity)*int64(unsafe.Sizeof(v))
}
