package table

// Map is a fixed-capacity, lock-free hash map.
//
// Insert-if-absent semantics: values are never overwritten concurrently
// (a torn write on a multi-word value would be visible to racing finds);
// replacing a value is an Erase followed by an Insert.
//
// A *Map is a shallow view onto shared backing storage; the owning
// lifetime is managed solely by NewMap/Close.
type Map[K comparable, V any] struct {
	core *core[K, V]
}

// NewMap creates a map with the given fixed capacity.
func NewMap[K comparable, V any](capacity int, opts ...Option[K]) (*Map[K, V], error) {
	c, err := newCore[K, V](capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{core: c}, nil
}

// Close releases the backing storage. Must be paired 1:1 with NewMap.
func (m *Map[K, V]) Close() error {
	return m.core.close()
}

// Insert adds (key, val) if key is absent. Returns true iff this caller
// introduced the entry; an existing key yields (false, ErrDuplicateKey)
// with no mutation.
func (m *Map[K, V]) Insert(key K, val V) (bool, error) {
	return m.core.insert(key, val)
}

// Find returns the value stored for key.
func (m *Map[K, V]) Find(key K) (V, bool) {
	idx, ok := m.core.lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return m.core.vals[idx], true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.core.lookup(key)
	return ok
}

// Erase removes key. Returns true iff this caller removed it.
func (m *Map[K, V]) Erase(key K) bool {
	return m.core.erase(key)
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int {
	return m.core.len()
}

// Cap returns the fixed capacity.
func (m *Map[K, V]) Cap() int {
	return m.core.capacity
}

// Empty returns true iff the map has capacity zero.
func (m *Map[K, V]) Empty() bool {
	return m.core.capacity == 0
}

// ForEach yields every live entry until yield returns false. Snapshot
// semantics under concurrent mutation.
func (m *Map[K, V]) ForEach(yield func(K, V) bool) {
	m.core.forEach(yield)
}

// Clear removes every entry and reclaims tombstones. Not safe against
// concurrent operations.
func (m *Map[K, V]) Clear() {
	m.core.clear()
}
