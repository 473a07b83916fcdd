package bitset

import (
	"bytes"
	"math/rand"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestBitset(t *testing.T) {
	b, err := New(100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if b.Len() != 100 {
		t.Errorf("expected len 100, got %d", b.Len())
	}

	b.Set(10)
	if !b.Test(10) {
		t.Errorf("expected bit 10 to be set")
	}
	if b.Count() != 1 {
		t.Errorf("expected count 1, got %d", b.Count())
	}

	b.Reset(10)
	if b.Test(10) {
		t.Errorf("expected bit 10 to be clear")
	}

	b.Set(10)
	b.Set(20)
	b.Set(30)
	if b.Count() != 3 {
		t.Errorf("expected count 3, got %d", b.Count())
	}

	b.ResetAll()
	if b.Count() != 0 {
		t.Errorf("expected count 0 after reset, got %d", b.Count())
	}
}

func TestBitset_Flip(t *testing.T) {
	b, _ := New(64)

	b.Flip(7)
	if !b.Test(7) {
		t.Errorf("expected bit 7 set after first flip")
	}
	b.Flip(7)
	if b.Test(7) {
		t.Errorf("expected bit 7 clear after second flip")
	}
}

func TestBitset_TestAndSet(t *testing.T) {
	b, _ := New(100)
	if b.TestAndSet(10) {
		t.Errorf("expected TestAndSet(10) to return false (was clear)")
	}
	if !b.Test(10) {
		t.Errorf("expected bit 10 to be set")
	}
	if !b.TestAndSet(10) {
		t.Errorf("expected TestAndSet(10) to return true (was set)")
	}

	if !b.TestAndReset(10) {
		t.Errorf("expected TestAndReset(10) to return true (was set)")
	}
	if b.TestAndReset(10) {
		t.Errorf("expected TestAndReset(10) to return false (was clear)")
	}
}

func TestBitset_Aggregates(t *testing.T) {
	b, _ := New(130) // spans three words, partial tail

	if b.Any() || b.All() {
		t.Errorf("fresh bitset should have no bits set")
	}
	if !b.None() {
		t.Errorf("expected None on fresh bitset")
	}

	b.SetAll()
	if b.Count() != 130 {
		t.Errorf("expected count 130 after SetAll, got %d", b.Count())
	}
	if !b.All() || b.None() {
		t.Errorf("expected All after SetAll")
	}

	b.ResetAll()
	if b.Count() != 0 || !b.None() {
		t.Errorf("expected empty after ResetAll, count=%d", b.Count())
	}
}

func TestBitset_ZeroCapacity(t *testing.T) {
	b, err := New(0)
	if err != nil {
		t.Fatalf("New(0) failed: %v", err)
	}
	if !b.Empty() {
		t.Errorf("expected Empty for capacity zero")
	}
	if b.All() || b.Any() {
		t.Errorf("expected all predicates false for capacity zero")
	}
	if !b.None() {
		t.Errorf("expected None for capacity zero")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on indexed access of zero-capacity bitset")
		}
	}()
	b.Set(0)
}

func TestBitset_InvalidCapacity(t *testing.T) {
	if _, err := New(-1); err != ErrInvalidCapacity {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestBitset_OutOfRange(t *testing.T) {
	b, _ := New(10)
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out-of-range index")
		}
	}()
	b.Set(10)
}

func TestBitset_Scan(t *testing.T) {
	b, _ := New(1000)
	b.Set(10)
	b.Set(20)
	b.Set(100)

	tests := []struct {
		start    int
		expected int
		found    bool
	}{
		{0, 10, true},
		{10, 10, true},
		{11, 20, true},
		{21, 100, true},
		{100, 100, true},
		{101, 0, false},
	}

	for _, tt := range tests {
		got, found := b.NextSet(tt.start)
		if found != tt.found {
			t.Errorf("NextSet(%d) found = %v, expected %v", tt.start, found, tt.found)
		}
		if found && got != tt.expected {
			t.Errorf("NextSet(%d) = %d, expected %d", tt.start, got, tt.expected)
		}
	}

	if got, found := b.NextClear(10); !found || got != 11 {
		t.Errorf("NextClear(10) = %d,%v, expected 11,true", got, found)
	}

	full, _ := New(64)
	full.SetAll()
	if _, found := full.NextClear(0); found {
		t.Errorf("NextClear on full bitset should not find anything")
	}
}

func TestBitset_ConcurrentSetAll(t *testing.T) {
	const n = 1 << 20 // 1,048,576 bits, one task per index

	b, err := New(n)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var g errgroup.Group
	g.SetLimit(4096)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			b.Set(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := b.Count(); got != n {
		t.Errorf("lost updates: count = %d, expected %d", got, n)
	}
	if !b.All() {
		t.Errorf("expected All after concurrent set of every index")
	}
}

func TestBitset_RandomSubset(t *testing.T) {
	const size = 99_999
	b, _ := New(size)

	rng := rand.New(rand.NewSource(42))
	chosen := make(map[int]bool, size/3)
	for len(chosen) < size/3 {
		chosen[rng.Intn(size)] = true
	}

	var g errgroup.Group
	g.SetLimit(256)
	for i := range chosen {
		g.Go(func() error {
			b.Set(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := b.Count(); got != len(chosen) {
		t.Errorf("count = %d, expected %d", got, len(chosen))
	}
	for i := 0; i < size; i++ {
		if b.Test(i) != chosen[i] {
			t.Fatalf("bit %d = %v, expected %v", i, b.Test(i), chosen[i])
		}
	}
}

func TestBitset_Serialization(t *testing.T) {
	b, _ := New(1000)
	b.Set(1)
	b.Set(500)
	b.Set(999)

	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	b2, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if b2.Len() != 1000 {
		t.Errorf("expected len 1000, got %d", b2.Len())
	}
	if !b2.Test(1) || !b2.Test(500) || !b2.Test(999) {
		t.Errorf("serialization lost bits")
	}
	if b2.Count() != 3 {
		t.Errorf("expected count 3, got %d", b2.Count())
	}

	// In-place restore requires matching capacity.
	b3, _ := New(10)
	if _, err := b3.ReadFrom(bytes.NewReader(buf.Bytes())); err != ErrCapacityMismatch {
		t.Errorf("expected ErrCapacityMismatch, got %v", err)
	}
}

func TestBitset_Roaring(t *testing.T) {
	b, _ := New(500)
	b.Set(3)
	b.Set(250)
	b.Set(499)

	rb := b.ToRoaring()
	if rb.GetCardinality() != 3 {
		t.Errorf("expected cardinality 3, got %d", rb.GetCardinality())
	}

	b2, err := FromRoaring(rb, 500)
	if err != nil {
		t.Fatalf("FromRoaring failed: %v", err)
	}
	for _, i := range []int{3, 250, 499} {
		if !b2.Test(i) {
			t.Errorf("expected bit %d set after round-trip", i)
		}
	}
	if b2.Count() != 3 {
		t.Errorf("expected count 3, got %d", b2.Count())
	}
}

func TestBitset_OffHeap(t *testing.T) {
	b, err := NewOffHeap(4096)
	if err != nil {
		t.Fatalf("NewOffHeap failed: %v", err)
	}

	b.Set(0)
	b.Set(4095)
	if b.Count() != 2 {
		t.Errorf("expected count 2, got %d", b.Count())
	}

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
