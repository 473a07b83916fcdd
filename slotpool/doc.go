// Package slotpool provides a lock-free, fixed-capacity slot allocator.
//
// A Pool hands out integer slot indices from [0, capacity). Occupancy is
// one bit per slot in an atomic bitset; a slot is claimed by winning the
// Free -> Occupied transition with a single-bit CAS. There is no ordering
// or fairness guarantee among concurrent allocators; any free slot may go
// to any caller, which avoids serialization under massive concurrency.
package slotpool
