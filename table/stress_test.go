package table

import (
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Duplicate-insert race: every goroutine inserts the same new key;
// exactly one may report inserted=true, everyone else must observe the
// duplicate, and exactly one live entry may exist afterwards.
func TestSet_ConcurrentDuplicateInsert(t *testing.T) {
	const callers = 512

	s, err := NewSet[string](64)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var winners atomic.Int64
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			inserted, err := s.Insert("contended")
			if inserted {
				winners.Add(1)
				return err
			}
			if !errors.Is(err, ErrDuplicateKey) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent insert failed: %v", err)
	}

	if w := winners.Load(); w != 1 {
		t.Errorf("expected exactly 1 winner, got %d", w)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 live entry, got %d", s.Len())
	}
	if !s.Contains("contended") {
		t.Errorf("key must be present after the race")
	}
}

// The same race forced onto a single probe chain, where every caller
// fights over the identical first-free slot.
func TestSet_ConcurrentDuplicateInsert_SingleChain(t *testing.T) {
	const callers = 256

	s, err := NewSet[int](32, WithHashFunc[int](func(int) uint64 { return 0 }))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var winners atomic.Int64
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			inserted, err := s.Insert(7)
			if inserted {
				winners.Add(1)
				return err
			}
			if !errors.Is(err, ErrDuplicateKey) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if w := winners.Load(); w != 1 {
		t.Errorf("expected exactly 1 winner, got %d", w)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 live entry, got %d", s.Len())
	}
}

func TestMap_ConcurrentDistinctInserts(t *testing.T) {
	const n = 8192

	m, err := NewMap[int, int](n)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	var g errgroup.Group
	g.SetLimit(128)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			inserted, err := m.Insert(i, i*2)
			if err != nil {
				return err
			}
			if !inserted {
				return errors.New("distinct insert reported duplicate")
			}
			// Read-your-own-write within the same logical operation.
			if v, ok := m.Find(i); !ok || v != i*2 {
				return errors.New("read-your-own-write violated")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if m.Len() != n {
		t.Fatalf("expected %d live entries, got %d", n, m.Len())
	}
	for i := 0; i < n; i++ {
		if v, ok := m.Find(i); !ok || v != i*2 {
			t.Fatalf("key %d missing or wrong after concurrent fill", i)
		}
	}
}

// Concurrent erases of one key: exactly one caller wins the
// Occupied -> Tombstone transition.
func TestSet_ConcurrentErase(t *testing.T) {
	const callers = 256

	s, err := NewSet[string](16)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := s.Insert("victim"); err != nil {
		t.Fatal(err)
	}

	var winners atomic.Int64
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			if s.Erase("victim") {
				winners.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if w := winners.Load(); w != 1 {
		t.Errorf("expected exactly 1 erase winner, got %d", w)
	}
	if s.Len() != 0 {
		t.Errorf("expected 0 live entries, got %d", s.Len())
	}
}

// Mixed insert/find/erase churn across disjoint key ranges; verifies the
// live count and final contents settle exactly.
func TestMap_MixedChurn(t *testing.T) {
	const (
		keys    = 1024
		rounds  = 8
		workers = 32
	)

	// Tombstones are never reused, so every insert consumes a fresh
	// slot: size for all rounds plus the final fill.
	m, err := NewMap[int, int](keys*(rounds+1) + 64)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			lo := w * (keys / workers)
			hi := lo + keys/workers
			for r := 0; r < rounds; r++ {
				for k := lo; k < hi; k++ {
					if _, err := m.Insert(k, k+r); err != nil {
						return err
					}
				}
				for k := lo; k < hi; k++ {
					m.Erase(k)
				}
			}
			for k := lo; k < hi; k++ {
				inserted, err := m.Insert(k, k)
				if err != nil {
					return err
				}
				if !inserted {
					return errors.New("final insert reported duplicate")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if m.Len() != keys {
		t.Fatalf("expected %d live entries, got %d", keys, m.Len())
	}
	for k := 0; k < keys; k++ {
		if v, ok := m.Find(k); !ok || v != k {
			t.Fatalf("key %d = %d,%v after churn", k, v, ok)
		}
	}
}
