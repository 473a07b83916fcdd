package table

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/parcon/parcon/bitset"
	"github.com/parcon/parcon/slotpool"
)

var (
	// ErrTableFull is returned when an insert exhausts the probe sequence
	// without finding a claimable slot. Allocator-level exhaustion
	// surfaces as this error.
	ErrTableFull = errors.New("table: table full")
	// ErrDuplicateKey is returned when an insert finds the key already
	// present. The table is not mutated.
	ErrDuplicateKey = errors.New("table: duplicate key")
	// ErrInvalidCapacity is returned when a table is created with a
	// negative capacity.
	ErrInvalidCapacity = errors.New("table: invalid capacity")
)

// config carries construction options shared by Set and Map.
type config[K comparable] struct {
	hash    func(K) uint64
	offHeap bool
}

// Option configures a Set or Map at creation.
type Option[K comparable] func(*config[K])

// WithHashFunc injects the hash function used to derive probe sequences.
// The function must be deterministic for the lifetime of the table.
// Defaults to a per-table seeded maphash.
func WithHashFunc[K comparable](h func(K) uint64) Option[K] {
	return func(c *config[K]) {
		c.hash = h
	}
}

// WithOffHeapBits places the occupancy, publish and grave bit arrays in
// anonymous memory mappings outside the Go heap.
func WithOffHeapBits[K comparable]() Option[K] {
	return func(c *config[K]) {
		c.offHeap = true
	}
}

// core is the probing engine shared by Set and Map.
type core[K comparable, V any] struct {
	pool      *slotpool.Pool
	published *bitset.Bitset
	graves    *bitset.Bitset
	keys      []K
	vals      []V
	hash      func(K) uint64
	live      atomic.Int64
	capacity  int
}

func newCore[K comparable, V any](capacity int, opts ...Option[K]) (*core[K, V], error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	cfg := config[K]{hash: defaultHash[K]()}
	for _, opt := range opts {
		opt(&cfg)
	}

	newPool, newBits := slotpool.New, bitset.New
	if cfg.offHeap {
		newPool, newBits = slotpool.NewOffHeap, bitset.NewOffHeap
	}

	pool, err := newPool(capacity)
	if err != nil {
		return nil, err
	}
	published, err := newBits(capacity)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	graves, err := newBits(capacity)
	if err != nil {
		_ = pool.Close()
		_ = published.Close()
		return nil, err
	}

	return &core[K, V]{
		pool:      pool,
		published: published,
		graves:    graves,
		keys:      make([]K, capacity),
		vals:      make([]V, capacity),
		hash:      cfg.hash,
		capacity:  capacity,
	}, nil
}

func (c *core[K, V]) close() error {
	return errors.Join(c.pool.Close(), c.published.Close(), c.graves.Close())
}

// home returns the first probe index for key.
func (c *core[K, V]) home(key K) int {
	return int(c.hash(key) % uint64(c.capacity)) //nolint:gosec // capacity > 0 checked by callers
}

// insert places key (and value) if absent. Returns true iff this caller
// introduced the entry; an existing key yields (false, ErrDuplicateKey)
// with no mutation.
func (c *core[K, V]) insert(key K, val V) (bool, error) {
	if c.capacity == 0 {
		return false, ErrTableFull
	}

	h := c.home(key)
	for j := 0; j < c.capacity; j++ {
		idx := h + j
		if idx >= c.capacity {
			idx -= c.capacity
		}

		for {
			if !c.pool.Occupied(idx) {
				if !c.pool.TryAcquire(idx) {
					// Lost the claim race; re-examine the slot.
					continue
				}
				c.keys[idx] = key
				c.vals[idx] = val
				// Publish after the payload write; a concurrent find
				// that sees this bit sees the full payload.
				c.published.Set(idx)
				c.live.Add(1)
				return true, nil
			}

			if c.published.Test(idx) {
				if c.keys[idx] == key {
					return false, ErrDuplicateKey
				}
				break // other key, next probe
			}

			if c.graves.Test(idx) {
				break // tombstone, next probe
			}

			// Reserved: a racing insert claimed this slot but has not
			// published yet. It may hold our key, so wait for the
			// outcome before moving on.
			runtime.Gosched()
		}
	}

	return false, ErrTableFull
}

// lookup returns the slot index holding key, if published.
func (c *core[K, V]) lookup(key K) (int, bool) {
	if c.capacity == 0 {
		return 0, false
	}

	h := c.home(key)
	for j := 0; j < c.capacity; j++ {
		idx := h + j
		if idx >= c.capacity {
			idx -= c.capacity
		}

		if !c.pool.Occupied(idx) {
			// A free slot terminates the probe chain: erase never
			// frees a slot, so no live entry can sit past this point.
			return 0, false
		}
		if c.published.Test(idx) && c.keys[idx] == key {
			return idx, true
		}
		// Reserved, tombstone or other key: keep probing.
	}
	return 0, false
}

// erase tombstones the slot holding key. Returns true iff this caller
// won the Occupied -> Tombstone transition.
func (c *core[K, V]) erase(key K) bool {
	if c.capacity == 0 {
		return false
	}

	h := c.home(key)
	for j := 0; j < c.capacity; j++ {
		idx := h + j
		if idx >= c.capacity {
			idx -= c.capacity
		}

		if !c.pool.Occupied(idx) {
			return false
		}
		if c.published.Test(idx) && c.keys[idx] == key {
			if !c.published.TestAndReset(idx) {
				// A concurrent erase of the same key won.
				return false
			}
			c.graves.Set(idx)
			c.live.Add(-1)
			return true
		}
	}
	return false
}

// forEach yields every published entry. Snapshot semantics: entries
// inserted or erased during iteration may or may not be observed.
func (c *core[K, V]) forEach(yield func(K, V) bool) {
	for idx := 0; idx < c.capacity; idx++ {
		if c.published.Test(idx) {
			if !yield(c.keys[idx], c.vals[idx]) {
				return
			}
		}
	}
}

// clear reclaims every slot. Not safe against concurrent operations.
func (c *core[K, V]) clear() {
	c.pool.Reset()
	c.published.ResetAll()
	c.graves.ResetAll()
	clear(c.keys)
	clear(c.vals)
	c.live.Store(0)
}

func (c *core[K, V]) len() int {
	return int(c.live.Load())
}
