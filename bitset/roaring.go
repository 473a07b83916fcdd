package bitset

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// ToRoaring converts the set bits into a compressed roaring bitmap.
// The result is a snapshot; it does not track later mutations.
func (b *Bitset) ToRoaring() *roaring.Bitmap {
	rb := roaring.New()
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		rb.Add(uint32(i)) //nolint:gosec // capacity bounded at creation
	}
	return rb
}

// FromRoaring creates a bitset of the given capacity with every index
// present in rb set. Indices at or beyond capacity are ignored.
func FromRoaring(rb *roaring.Bitmap, capacity int) (*Bitset, error) {
	b, err := New(capacity)
	if err != nil {
		return nil, err
	}
	it := rb.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i >= capacity {
			break
		}
		b.Set(i)
	}
	return b, nil
}
