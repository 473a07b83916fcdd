// Package snapshot serializes containers to a checksummed binary
// envelope and moves them in and out of blob storage.
//
// The envelope is a fixed 24-byte header (magic, format version,
// container kind, compression codec, CRC32, payload length) followed by
// the payload. Any container implementing io.WriterTo and io.ReaderFrom
// can be snapshotted; bitset.Bitset and slotpool.Pool both qualify.
//
// Payloads are optionally block-compressed with LZ4 (fast) or ZSTD
// (better ratio). The CRC32 covers the stored payload, so corruption is
// detected before decompression.
package snapshot
