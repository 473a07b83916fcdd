package bitset

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/parcon/parcon/internal/conv"
)

// ErrCapacityMismatch is returned by ReadFrom when the serialized
// capacity does not match the receiver's fixed capacity.
var ErrCapacityMismatch = errors.New("bitset: capacity mismatch")

// WriteTo serializes the bitset as a little-endian capacity followed by
// the word array. The snapshot is consistent only absent concurrent
// mutation. Implements io.WriterTo.
func (b *Bitset) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, uint64(b.size)); err != nil {
		return 0, err
	}
	n := int64(8)
	for i := range b.words {
		if err := binary.Write(w, binary.LittleEndian, b.words[i].Load()); err != nil {
			return n, err
		}
		n += 8
	}
	return n, nil
}

// ReadFrom restores bit contents written by WriteTo. The receiver's
// capacity is fixed, so the serialized capacity must match exactly.
// Implements io.ReaderFrom.
func (b *Bitset) ReadFrom(r io.Reader) (int64, error) {
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return 0, err
	}
	if size != uint64(b.size) {
		return 8, ErrCapacityMismatch
	}
	n := int64(8)
	for i := range b.words {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return n, err
		}
		b.words[i].Store(v)
		n += 8
	}
	return n, nil
}

// Read deserializes a bitset written by WriteTo into freshly allocated
// heap storage.
func Read(r io.Reader) (*Bitset, error) {
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	n, err := conv.Uint64ToInt(size)
	if err != nil {
		return nil, err
	}
	b, err := New(n)
	if err != nil {
		return nil, err
	}
	for i := range b.words {
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return nil, err
		}
		b.words[i].Store(v)
	}
	return b, nil
}
