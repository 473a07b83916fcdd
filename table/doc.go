// Package table provides fixed-capacity, lock-free open-addressing hash
// containers: Set and Map.
//
// Concurrency protocol, per slot:
//   - claim bit (slotpool): Free vs Claimed, won by single-bit CAS
//   - published bit: payload is written and visible
//   - grave bit: tombstone left by erase
//
// Insert claims the first Free slot on the key's probe sequence, writes
// the payload, then publishes. Because every operation probes the same
// deterministic linear sequence, concurrent inserters of one key collide
// on the same slot and the claim CAS picks exactly one winner; losers
// wait for the publish and report the duplicate. Erase tombstones the
// slot instead of freeing it, so probe chains through it stay intact.
// Tombstones are never reused; capacity is fixed at creation and Clear
// is the only reclamation point.
//
// A find that races a not-yet-published insert may report a miss; a find
// that observes the published bit is guaranteed a fully written payload.
package table
