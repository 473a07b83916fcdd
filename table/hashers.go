package table

import (
	"hash/maphash"

	"github.com/zeebo/xxh3"
)

// defaultHash returns a per-table seeded hash for any comparable key
// type. The seed is fixed at table creation, keeping probe sequences
// deterministic for the table's lifetime.
func defaultHash[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// StringHash hashes a string with xxh3. Suitable for WithHashFunc when
// probe sequences must be reproducible across tables and processes.
func StringHash(s string) uint64 {
	return xxh3.HashString(s)
}

// BytesHash hashes a byte slice with xxh3, for callers deriving table
// keys from externally composed byte payloads.
func BytesHash(b []byte) uint64 {
	return xxh3.Hash(b)
}

// Uint64Hash mixes an integer key with a splitmix64 finalizer so that
// sequential keys spread across the table instead of clustering into
// one probe run.
func Uint64Hash(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}
