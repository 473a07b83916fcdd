package parcon

import (
	"bytes"
	"context"
	"time"

	"github.com/parcon/parcon/bitset"
	"github.com/parcon/parcon/blobstore"
	"github.com/parcon/parcon/resource"
	"github.com/parcon/parcon/slotpool"
	"github.com/parcon/parcon/snapshot"
)

// Bitset wraps bitset.Bitset with resource accounting and snapshot
// persistence. All bit operations are promoted from the embedded type.
type Bitset struct {
	*bitset.Bitset
	opts options
	mem  int64
}

// NewBitset creates a fixed-size concurrent bitset.
func NewBitset(size int, optFns ...Option) (*Bitset, error) {
	o := applyOptions(optFns)

	mem := wordBytes(size)
	if !o.controller.TryAcquireMemory(mem) {
		return nil, ErrMemoryLimit
	}

	inner, err := newBits(size, o.offHeap)
	if err != nil {
		o.controller.ReleaseMemory(mem)
		return nil, translateError(err)
	}

	o.logger = o.logger.WithContainer("bitset", size)
	return &Bitset{Bitset: inner, opts: o, mem: mem}, nil
}

// Close releases the backing storage and refunds the memory reservation.
func (b *Bitset) Close() error {
	err := b.Bitset.Close()
	b.opts.controller.ReleaseMemory(b.mem)
	return err
}

// SaveSnapshot writes the bitset to the blob store under name.
func (b *Bitset) SaveSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	return b.opts.saveSnapshot(ctx, store, name, snapshot.KindBitset, b.Bitset)
}

// LoadSnapshot restores the bitset from the blob store. The snapshot
// capacity must match this bitset's capacity.
func (b *Bitset) LoadSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	return b.opts.loadSnapshot(ctx, store, name, snapshot.KindBitset, b.Bitset)
}

// Pool wraps slotpool.Pool with logging, metrics, resource accounting,
// and snapshot persistence.
type Pool struct {
	*slotpool.Pool
	opts options
	mem  int64
}

// NewPool creates a fixed-capacity lock-free slot allocator.
func NewPool(capacity int, optFns ...Option) (*Pool, error) {
	o := applyOptions(optFns)

	mem := wordBytes(capacity)
	if !o.controller.TryAcquireMemory(mem) {
		return nil, ErrMemoryLimit
	}

	var inner *slotpool.Pool
	var err error
	if o.offHeap {
		inner, err = slotpool.NewOffHeap(capacity)
	} else {
		inner, err = slotpool.New(capacity)
	}
	if err != nil {
		o.controller.ReleaseMemory(mem)
		return nil, translateError(err)
	}

	o.logger = o.logger.WithContainer("pool", capacity)
	return &Pool{Pool: inner, opts: o, mem: mem}, nil
}

// Allocate claims a free slot and returns its index.
func (p *Pool) Allocate() (int, error) {
	start := time.Now()
	idx, err := p.Pool.Allocate()
	err = translateError(err)
	p.opts.metricsCollector.RecordAllocate(time.Since(start), err)
	p.opts.logger.LogAllocate(idx, err)
	return idx, err
}

// Close releases the backing storage and refunds the memory reservation.
func (p *Pool) Close() error {
	err := p.Pool.Close()
	p.opts.controller.ReleaseMemory(p.mem)
	return err
}

// SaveSnapshot writes the pool occupancy to the blob store under name.
func (p *Pool) SaveSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	return p.opts.saveSnapshot(ctx, store, name, snapshot.KindPool, p.Pool)
}

// LoadSnapshot restores the pool occupancy from the blob store. The
// snapshot capacity must match this pool's capacity.
func (p *Pool) LoadSnapshot(ctx context.Context, store blobstore.Store, name string) error {
	return p.opts.loadSnapshot(ctx, store, name, snapshot.KindPool, p.Pool)
}

// saveSnapshot funnels every facade snapshot save through the resource
// controller: one worker slot, rate-limited writes.
func (o *options) saveSnapshot(ctx context.Context, store blobstore.Store, name string, kind snapshot.Kind, src snapshot.Snapshotter) error {
	start := time.Now()
	err := o.doSave(ctx, store, name, kind, src)
	o.metricsCollector.RecordSnapshot("save", time.Since(start), err)
	o.logger.LogSnapshot(ctx, "save", name, err)
	return err
}

func (o *options) doSave(ctx context.Context, store blobstore.Store, name string, kind snapshot.Kind, src snapshot.Snapshotter) error {
	if err := o.controller.AcquireSnapshot(ctx); err != nil {
		return err
	}
	defer o.controller.ReleaseSnapshot()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	limited := resource.NewRateLimitedWriter(ctx, w, o.controller)
	if _, err := snapshot.Write(limited, kind, o.codec, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (o *options) loadSnapshot(ctx context.Context, store blobstore.Store, name string, kind snapshot.Kind, dst snapshot.Snapshotter) error {
	start := time.Now()
	err := o.doLoad(ctx, store, name, kind, dst)
	o.metricsCollector.RecordSnapshot("load", time.Since(start), err)
	o.logger.LogSnapshot(ctx, "load", name, err)
	return err
}

func (o *options) doLoad(ctx context.Context, store blobstore.Store, name string, kind snapshot.Kind, dst snapshot.Snapshotter) error {
	if err := o.controller.AcquireSnapshot(ctx); err != nil {
		return err
	}
	defer o.controller.ReleaseSnapshot()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return err
	}
	limited := resource.NewRateLimitedReader(ctx, bytes.NewReader(data), o.controller)
	return snapshot.Read(limited, kind, dst)
}

func newBits(size int, offHeap bool) (*bitset.Bitset, error) {
	if offHeap {
		return bitset.NewOffHeap(size)
	}
	return bitset.New(size)
}

// wordBytes is the backing storage charged against the memory limit for
// a bit array of n bits.
func wordBytes(n int) int64 {
	if n <= 0 {
		return 0
	}
	return int64((n+63)/64) * 8
}
