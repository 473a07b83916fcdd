package bitset

import (
	"errors"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/parcon/parcon/internal/mmap"
)

var (
	// ErrInvalidCapacity is returned when a bitset is created with a negative capacity.
	ErrInvalidCapacity = errors.New("bitset: invalid capacity")
)

const wordBits = 64

// wordsFor returns the number of 64-bit words needed to hold n bits.
func wordsFor(n int) int {
	return (n + wordBits - 1) / wordBits
}

// Bitset is a fixed-capacity, concurrency-safe bit array.
//
// A *Bitset is a shallow view onto shared backing storage: copying the
// pointer into other goroutines never duplicates the word array. The
// owning lifetime is managed solely by New/Close.
type Bitset struct {
	words []atomic.Uint64
	size  int
	// mapping holds the off-heap backing storage, nil when heap-backed.
	mapping *mmap.Mapping
}

// New creates a zero-initialized bitset with the given capacity in bits.
// Capacity zero is legal and yields an empty bitset.
func New(capacity int) (*Bitset, error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	return &Bitset{
		words: make([]atomic.Uint64, wordsFor(capacity)),
		size:  capacity,
	}, nil
}

// NewOffHeap creates a bitset whose word array lives in an anonymous
// memory mapping outside the Go heap. The mapping is released by Close.
func NewOffHeap(capacity int) (*Bitset, error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}
	nWords := wordsFor(capacity)
	if nWords == 0 {
		return &Bitset{size: capacity}, nil
	}
	m, err := mmap.MapAnon(nWords * 8)
	if err != nil {
		return nil, err
	}
	data := m.Bytes()
	words := unsafe.Slice((*atomic.Uint64)(unsafe.Pointer(&data[0])), nWords) //nolint:gosec // off-heap word storage
	return &Bitset{
		words:   words,
		size:    capacity,
		mapping: m,
	}, nil
}

// Close releases the backing storage. It must be paired 1:1 with New or
// NewOffHeap. Any access after Close is a caller contract violation.
func (b *Bitset) Close() error {
	b.words = nil
	if b.mapping != nil {
		m := b.mapping
		b.mapping = nil
		return m.Close()
	}
	return nil
}

// Len returns the capacity of the bitset in bits.
func (b *Bitset) Len() int {
	return b.size
}

// Empty returns true iff the bitset has capacity zero, independent of
// bit contents.
func (b *Bitset) Empty() bool {
	return b.size == 0
}

func (b *Bitset) check(i int) {
	if i < 0 || i >= b.size {
		panic("bitset: index out of range")
	}
}

// Set sets the bit at index i. Concurrent Set/Reset/Flip calls on
// different bits of the same word never lose each other's updates.
func (b *Bitset) Set(i int) {
	b.check(i)
	b.words[i/wordBits].Or(1 << (uint(i) % wordBits))
}

// Reset clears the bit at index i.
func (b *Bitset) Reset(i int) {
	b.check(i)
	b.words[i/wordBits].And(^uint64(1 << (uint(i) % wordBits)))
}

// Flip inverts the bit at index i via a CAS retry loop.
func (b *Bitset) Flip(i int) {
	b.check(i)
	w := &b.words[i/wordBits]
	mask := uint64(1) << (uint(i) % wordBits)
	for {
		old := w.Load()
		if w.CompareAndSwap(old, old^mask) {
			return
		}
	}
}

// Test returns the current value of the bit at index i.
func (b *Bitset) Test(i int) bool {
	b.check(i)
	return b.words[i/wordBits].Load()&(1<<(uint(i)%wordBits)) != 0
}

// TestAndSet sets the bit at index i and returns its previous value.
// A false return means this caller won the Free -> Occupied transition.
func (b *Bitset) TestAndSet(i int) bool {
	b.check(i)
	w := &b.words[i/wordBits]
	mask := uint64(1) << (uint(i) % wordBits)
	for {
		old := w.Load()
		if old&mask != 0 {
			return true
		}
		if w.CompareAndSwap(old, old|mask) {
			return false
		}
	}
}

// TestAndReset clears the bit at index i and returns its previous value.
// A true return means this caller won the Occupied -> Free transition.
func (b *Bitset) TestAndReset(i int) bool {
	b.check(i)
	w := &b.words[i/wordBits]
	mask := uint64(1) << (uint(i) % wordBits)
	for {
		old := w.Load()
		if old&mask == 0 {
			return false
		}
		if w.CompareAndSwap(old, old&^mask) {
			return true
		}
	}
}

// SetAll sets every bit. Not atomic as a whole; safe only when no
// concurrent per-bit operations are in flight.
func (b *Bitset) SetAll() {
	if b.size == 0 {
		return
	}
	for i := range b.words {
		b.words[i].Store(^uint64(0))
	}
	// Mask out bits beyond size in the tail word so Count stays exact.
	if rem := uint(b.size) % wordBits; rem != 0 {
		b.words[len(b.words)-1].Store((uint64(1) << rem) - 1)
	}
}

// ResetAll clears every bit. Same concurrency caveat as SetAll.
func (b *Bitset) ResetAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// Count returns the number of set bits by summing per-word population
// counts. The value is a snapshot, exact only absent concurrent mutation.
func (b *Bitset) Count() int {
	count := 0
	for i := range b.words {
		if v := b.words[i].Load(); v != 0 {
			count += bits.OnesCount64(v)
		}
	}
	return count
}

// All returns true iff every bit is set. False for capacity zero.
func (b *Bitset) All() bool {
	return b.size > 0 && b.Count() == b.size
}

// Any returns true iff at least one bit is set.
func (b *Bitset) Any() bool {
	for i := range b.words {
		if b.words[i].Load() != 0 {
			return true
		}
	}
	return false
}

// None returns true iff no bit is set.
func (b *Bitset) None() bool {
	return !b.Any()
}

// NextSet returns the index of the first set bit at or after from.
func (b *Bitset) NextSet(from int) (int, bool) {
	return b.scan(from, false)
}

// NextClear returns the index of the first clear bit at or after from.
func (b *Bitset) NextClear(from int) (int, bool) {
	return b.scan(from, true)
}

func (b *Bitset) scan(from int, clear bool) (int, bool) {
	if from < 0 {
		from = 0
	}
	if from >= b.size {
		return 0, false
	}
	wordIdx := from / wordBits
	v := b.words[wordIdx].Load()
	if clear {
		v = ^v
	}
	// Mask out bits before from in the first word.
	v &= ^uint64(0) << (uint(from) % wordBits)
	for {
		if v != 0 {
			idx := wordIdx*wordBits + bits.TrailingZeros64(v)
			if idx >= b.size {
				return 0, false
			}
			return idx, true
		}
		wordIdx++
		if wordIdx >= len(b.words) {
			return 0, false
		}
		v = b.words[wordIdx].Load()
		if clear {
			v = ^v
		}
	}
}
