package table

// Set is a fixed-capacity, lock-free hash set.
//
// A *Set is a shallow view onto shared backing storage: copying the
// pointer into other goroutines shares the same slots. The owning
// lifetime is managed solely by NewSet/Close.
type Set[K comparable] struct {
	core *core[K, struct{}]
}

// NewSet creates a set with the given fixed capacity.
func NewSet[K comparable](capacity int, opts ...Option[K]) (*Set[K], error) {
	c, err := newCore[K, struct{}](capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Set[K]{core: c}, nil
}

// Close releases the backing storage. Must be paired 1:1 with NewSet.
func (s *Set[K]) Close() error {
	return s.core.close()
}

// Insert adds key if absent. Returns true iff this caller introduced
// the entry; an existing key yields (false, ErrDuplicateKey) with no
// mutation, so deduplication callers can branch on either signal.
func (s *Set[K]) Insert(key K) (bool, error) {
	return s.core.insert(key, struct{}{})
}

// Contains reports whether key is present.
func (s *Set[K]) Contains(key K) bool {
	_, ok := s.core.lookup(key)
	return ok
}

// Erase removes key. Returns true iff this caller removed it.
func (s *Set[K]) Erase(key K) bool {
	return s.core.erase(key)
}

// Len returns the number of live entries.
func (s *Set[K]) Len() int {
	return s.core.len()
}

// Cap returns the fixed capacity.
func (s *Set[K]) Cap() int {
	return s.core.capacity
}

// Empty returns true iff the set has capacity zero.
func (s *Set[K]) Empty() bool {
	return s.core.capacity == 0
}

// ForEach yields every live key until yield returns false. Snapshot
// semantics under concurrent mutation.
func (s *Set[K]) ForEach(yield func(K) bool) {
	s.core.forEach(func(k K, _ struct{}) bool {
		return yield(k)
	})
}

// Clear removes every entry and reclaims tombstones. Not safe against
// concurrent operations.
func (s *Set[K]) Clear() {
	s.core.clear()
}
