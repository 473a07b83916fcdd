package slotpool

import (
	"errors"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestPool_Exhaustion(t *testing.T) {
	const capacity = 257

	p, err := New(capacity)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	seen := make(map[int]bool, capacity)
	for i := 0; i < capacity; i++ {
		idx, err := p.Allocate()
		if err != nil {
			t.Fatalf("Allocate %d failed: %v", i, err)
		}
		if idx < 0 || idx >= capacity {
			t.Fatalf("slot %d out of range", idx)
		}
		if seen[idx] {
			t.Fatalf("slot %d handed out twice", idx)
		}
		seen[idx] = true
	}

	if _, err := p.Allocate(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
	if p.Len() != capacity || p.Free() != 0 {
		t.Errorf("Len=%d Free=%d, expected %d/0", p.Len(), p.Free(), capacity)
	}
}

func TestPool_ReleaseReuse(t *testing.T) {
	p, _ := New(8)

	var slots []int
	for i := 0; i < 8; i++ {
		idx, err := p.Allocate()
		if err != nil {
			t.Fatal(err)
		}
		slots = append(slots, idx)
	}

	p.Release(slots[3])
	if p.Occupied(slots[3]) {
		t.Errorf("slot should be free after Release")
	}

	idx, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate after Release failed: %v", err)
	}
	if idx != slots[3] {
		t.Errorf("expected reuse of slot %d, got %d", slots[3], idx)
	}
}

func TestPool_DoubleRelease(t *testing.T) {
	p, _ := New(4)
	idx, _ := p.Allocate()
	p.Release(idx)

	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on double release")
		}
	}()
	p.Release(idx)
}

func TestPool_TryAcquire(t *testing.T) {
	p, _ := New(16)

	if !p.TryAcquire(5) {
		t.Fatalf("first TryAcquire(5) should win")
	}
	if p.TryAcquire(5) {
		t.Errorf("second TryAcquire(5) should lose")
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, expected 1", p.Len())
	}

	p.Release(5)
	if !p.TryAcquire(5) {
		t.Errorf("TryAcquire(5) should win after release")
	}
}

func TestPool_ZeroCapacity(t *testing.T) {
	p, err := New(0)
	if err != nil {
		t.Fatalf("New(0) failed: %v", err)
	}
	if _, err := p.Allocate(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestPool_InvalidCapacity(t *testing.T) {
	if _, err := New(-3); !errors.Is(err, ErrInvalidCapacity) {
		t.Errorf("expected ErrInvalidCapacity, got %v", err)
	}
}

func TestPool_ConcurrentAllocate(t *testing.T) {
	const capacity = 10_000

	p, _ := New(capacity)

	var mu sync.Mutex
	seen := make(map[int]int, capacity)

	var g errgroup.Group
	g.SetLimit(64)
	for i := 0; i < capacity; i++ {
		g.Go(func() error {
			idx, err := p.Allocate()
			if err != nil {
				return err
			}
			mu.Lock()
			seen[idx]++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Allocate failed: %v", err)
	}

	if len(seen) != capacity {
		t.Fatalf("expected %d distinct slots, got %d", capacity, len(seen))
	}
	for idx, n := range seen {
		if n != 1 {
			t.Fatalf("slot %d handed out %d times", idx, n)
		}
	}
	if _, err := p.Allocate(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted after concurrent fill, got %v", err)
	}
}

func TestPool_Reset(t *testing.T) {
	p, _ := New(32)
	for i := 0; i < 32; i++ {
		if _, err := p.Allocate(); err != nil {
			t.Fatal(err)
		}
	}

	p.Reset()
	if p.Len() != 0 || p.Free() != 32 {
		t.Errorf("Len=%d Free=%d after Reset", p.Len(), p.Free())
	}
	if _, err := p.Allocate(); err != nil {
		t.Errorf("Allocate after Reset failed: %v", err)
	}
}
