// Package parcon provides fixed-capacity, lock-free concurrent
// containers for Go: an atomic bitset, a slot allocator, and open
// addressing hash sets and maps.
//
// Every container is sized once at construction and never rehashes,
// reallocates, or moves entries, so operations stay wait-bounded under
// heavy write contention. Mutations go through compare-and-swap on
// per-slot state bits; there are no locks anywhere on the hot path.
//
// # Quick Start
//
//	set, _ := parcon.NewSet[uint64](1 << 20)
//	defer set.Close()
//
//	inserted, err := set.Insert(42)   // true, nil
//	inserted, err = set.Insert(42)    // false, parcon.ErrDuplicate
//	set.Contains(42)                  // true
//	set.Erase(42)                     // true
//
// The raw containers live in the bitset, slotpool, and table packages.
// This package wraps them with structured logging, metrics, resource
// accounting, and snapshot persistence:
//
//	ctrl := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 30})
//	m, _ := parcon.NewMap[string, int](1<<16,
//	    parcon.WithResourceController(ctrl),
//	    parcon.WithLogLevel(slog.LevelInfo),
//	)
//
// # Snapshots
//
// Bitsets and pools serialize to a checksummed envelope and travel
// through any blobstore.Store (local disk, memory, S3, MinIO):
//
//	bits, _ := parcon.NewBitset(1 << 24)
//	store := blobstore.NewLocalStore("./data")
//	_ = bits.SaveSnapshot(ctx, store, "bits-001.snap")
//
// # Capacity Model
//
// Containers never grow. Insert returns ErrFull once every slot has
// been claimed; erased table slots become tombstones and are not
// reused until Clear. Size for the peak live count plus churn.
package parcon
