package slotpool

import (
	"errors"
	"sync/atomic"

	"github.com/parcon/parcon/bitset"
)

var (
	// ErrPoolExhausted is returned by Allocate when no free slot exists
	// after a full scan of the pool.
	ErrPoolExhausted = errors.New("slotpool: pool exhausted")
	// ErrInvalidCapacity is returned when a pool is created with a
	// negative capacity.
	ErrInvalidCapacity = errors.New("slotpool: invalid capacity")
)

// Pool is a fixed-capacity allocator of slot indices.
//
// A *Pool is a shallow view onto shared state; copying the pointer into
// other goroutines shares the same slots.
type Pool struct {
	occ     *bitset.Bitset
	cursor  atomic.Uint64 // rotating scan hint, reduces claim contention
	claimed atomic.Int64
}

// New creates a pool of the given capacity with heap-backed occupancy.
func New(capacity int) (*Pool, error) {
	occ, err := bitset.New(capacity)
	if err != nil {
		return nil, ErrInvalidCapacity
	}
	return &Pool{occ: occ}, nil
}

// NewOffHeap creates a pool whose occupancy bits live in an anonymous
// memory mapping outside the Go heap.
func NewOffHeap(capacity int) (*Pool, error) {
	occ, err := bitset.NewOffHeap(capacity)
	if err != nil {
		if errors.Is(err, bitset.ErrInvalidCapacity) {
			return nil, ErrInvalidCapacity
		}
		return nil, err
	}
	return &Pool{occ: occ}, nil
}

// Close releases the backing storage. Must be paired 1:1 with New.
func (p *Pool) Close() error {
	return p.occ.Close()
}

// Allocate claims a free slot and returns its index. It scans from a
// rotating cursor so concurrent callers spread across the pool instead
// of fighting over the lowest free bit. Returns ErrPoolExhausted when a
// full scan finds no claimable slot.
func (p *Pool) Allocate() (int, error) {
	n := p.occ.Len()
	if n == 0 {
		return 0, ErrPoolExhausted
	}

	start := int(p.cursor.Add(1) % uint64(n)) //nolint:gosec // n > 0

	if idx, ok := p.scanClaim(start, n); ok {
		return idx, nil
	}
	if idx, ok := p.scanClaim(0, start); ok {
		return idx, nil
	}
	return 0, ErrPoolExhausted
}

// scanClaim walks free bits in [from, to) and tries to claim each one.
func (p *Pool) scanClaim(from, to int) (int, bool) {
	for i := from; i < to; {
		idx, ok := p.occ.NextClear(i)
		if !ok || idx >= to {
			return 0, false
		}
		if !p.occ.TestAndSet(idx) {
			p.claimed.Add(1)
			return idx, true
		}
		// Lost the claim race; keep scanning forward.
		i = idx + 1
	}
	return 0, false
}

// TryAcquire claims one specific slot. Returns true iff this caller won
// the Free -> Occupied transition. This is the open-addressing hook used
// by the hash table to claim the slot at a probed index.
func (p *Pool) TryAcquire(i int) bool {
	if p.occ.TestAndSet(i) {
		return false
	}
	p.claimed.Add(1)
	return true
}

// Release returns a slot to the pool. The caller must hold the only live
// claim; releasing a free slot is a contract violation and panics.
func (p *Pool) Release(i int) {
	if !p.occ.TestAndReset(i) {
		panic("slotpool: release of unclaimed slot")
	}
	p.claimed.Add(-1)
}

// Occupied reports whether slot i is currently claimed.
func (p *Pool) Occupied(i int) bool {
	return p.occ.Test(i)
}

// Len returns the number of claimed slots.
func (p *Pool) Len() int {
	return int(p.claimed.Load())
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return p.occ.Len()
}

// Free returns the number of unclaimed slots.
func (p *Pool) Free() int {
	return p.Cap() - p.Len()
}

// Reset reclaims every slot. Not safe against concurrent Allocate or
// Release calls.
func (p *Pool) Reset() {
	p.occ.ResetAll()
	p.claimed.Store(0)
}
