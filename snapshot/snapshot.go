package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/parcon/parcon/blobstore"
	"github.com/parcon/parcon/internal/conv"
)

// Snapshotter is any container that can serialize and restore itself.
type Snapshotter interface {
	io.WriterTo
	io.ReaderFrom
}

// Write serializes src into the snapshot envelope on w and returns the
// number of bytes written. The snapshot is consistent only absent
// concurrent mutation of src.
func Write(w io.Writer, kind Kind, codec Codec, src io.WriterTo) (int64, error) {
	var plain bytes.Buffer
	if _, err := src.WriteTo(&plain); err != nil {
		return 0, fmt.Errorf("serialize container: %w", err)
	}

	payload, err := encodePayload(plain.Bytes(), codec)
	if err != nil {
		return 0, err
	}

	h := header{
		Kind:       kind,
		Codec:      codec,
		Checksum:   Checksum(payload),
		PayloadLen: uint64(len(payload)),
	}

	n, err := w.Write(h.encode())
	if err != nil {
		return int64(n), err
	}
	written := int64(n)

	n, err = w.Write(payload)
	written += int64(n)
	return written, err
}

// Read restores a snapshot of the given kind from r into dst. The
// checksum is verified before decompression, so a corrupt payload never
// reaches the container.
func Read(r io.Reader, kind Kind, dst io.ReaderFrom) error {
	var hbuf [headerSize]byte
	if _, err := io.ReadFull(r, hbuf[:]); err != nil {
		return fmt.Errorf("read snapshot header: %w", err)
	}
	h, err := decodeHeader(hbuf[:])
	if err != nil {
		return err
	}
	if h.Kind != kind {
		return fmt.Errorf("%w: expected %d, got %d", ErrKindMismatch, kind, h.Kind)
	}

	payloadLen, err := conv.Uint64ToInt(h.PayloadLen)
	if err != nil {
		return fmt.Errorf("snapshot payload length: %w", err)
	}
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("read snapshot payload: %w", err)
	}
	if err := verifyChecksum(h.Checksum, payload); err != nil {
		return err
	}

	plain, err := decodePayload(payload, h.Codec)
	if err != nil {
		return err
	}

	if _, err := dst.ReadFrom(bytes.NewReader(plain)); err != nil {
		return fmt.Errorf("restore container: %w", err)
	}
	return nil
}

// Save writes a snapshot of src to the blob store under name.
func Save(ctx context.Context, store blobstore.Store, name string, kind Kind, codec Codec, src io.WriterTo) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := Write(w, kind, codec, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Load restores a snapshot of the given kind from the blob store into dst.
func Load(ctx context.Context, store blobstore.Store, name string, kind Kind, dst io.ReaderFrom) error {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return err
	}
	return Read(bytes.NewReader(data), kind, dst)
}
