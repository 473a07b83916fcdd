package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies parcon snapshot files (ASCII: "PCN1").
	MagicNumber = 0x50434E31
	// Version is the current envelope format version (v1.0.0).
	Version = 0x00010000

	headerSize = 24
)

// Kind identifies the container type stored in a snapshot.
type Kind uint8

const (
	// KindBitset is a serialized bitset.Bitset.
	KindBitset Kind = 1
	// KindPool is a serialized slotpool.Pool occupancy map.
	KindPool Kind = 2
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic number")
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	ErrKindMismatch   = errors.New("snapshot: container kind mismatch")
)

// header is the fixed-size envelope prefix. All fields little-endian.
//
//	[0:4]   magic
//	[4:8]   version
//	[8]     kind
//	[9]     codec
//	[10:12] reserved
//	[12:16] CRC32 of the stored payload
//	[16:24] payload length in bytes
type header struct {
	Kind       Kind
	Codec      Codec
	Checksum   uint32
	PayloadLen uint64
}

func (h header) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:], MagicNumber)
	binary.LittleEndian.PutUint32(buf[4:], Version)
	buf[8] = byte(h.Kind)
	buf[9] = byte(h.Codec)
	binary.LittleEndian.PutUint32(buf[12:], h.Checksum)
	binary.LittleEndian.PutUint64(buf[16:], h.PayloadLen)
	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if magic := binary.LittleEndian.Uint32(buf[0:]); magic != MagicNumber {
		return header{}, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, magic)
	}
	if version := binary.LittleEndian.Uint32(buf[4:]); version != Version {
		return header{}, fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, version)
	}
	return header{
		Kind:       Kind(buf[8]),
		Codec:      Codec(buf[9]),
		Checksum:   binary.LittleEndian.Uint32(buf[12:]),
		PayloadLen: binary.LittleEndian.Uint64(buf[16:]),
	}, nil
}
