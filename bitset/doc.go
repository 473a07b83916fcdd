// Package bitset provides a fixed-capacity, lock-free atomic bit array.
//
// Architecture:
//   - Flat word array: one atomic.Uint64 per 64 bits, sized at creation
//   - Lock-free: atomic Or/And for set/reset, CAS retry loops for flip
//     and test-and-set
//   - No growth: capacity is fixed when the bitset is created
//
// Used as the occupancy substrate for slotpool and table, and directly
// for flag/visited tracking under massive goroutine fan-out.
package bitset
