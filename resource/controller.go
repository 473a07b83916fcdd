// Package resource provides global limits for container backing memory,
// snapshot worker concurrency, and snapshot IO throughput.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for container backing storage
	// (word arrays, key/value slabs). If 0, usage is tracked but not
	// enforced.
	MemoryLimitBytes int64

	// MaxSnapshotWorkers is the maximum number of concurrent snapshot
	// jobs. If 0, defaults to 1.
	MaxSnapshotWorkers int64

	// IOLimitBytesPerSec caps snapshot read/write throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces the limits in Config. A nil *Controller is valid
// and enforces nothing, so callers never need to branch.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	snapSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxSnapshotWorkers <= 0 {
		cfg.MaxSnapshotWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		snapSem: semaphore.NewWeighted(cfg.MaxSnapshotWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes of backing storage. With a hard limit
// configured, blocks until the reservation fits or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory reserves bytes without blocking. Returns false if
// the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory returns a reservation made by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireSnapshot reserves a snapshot worker slot, blocking while all
// slots are busy.
func (c *Controller) AcquireSnapshot(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.snapSem.Acquire(ctx, 1)
}

// TryAcquireSnapshot reserves a snapshot worker slot without blocking.
func (c *Controller) TryAcquireSnapshot() bool {
	if c == nil {
		return true
	}
	return c.snapSem.TryAcquire(1)
}

// ReleaseSnapshot returns a snapshot worker slot.
func (c *Controller) ReleaseSnapshot() {
	if c == nil {
		return
	}
	c.snapSem.Release(1)
}

// AcquireIO waits until the IO limit allows bytes more bytes. A single
// snapshot payload can exceed the limiter's burst size, so oversized
// requests are charged in burst-sized installments.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > burst {
		if err := c.ioLimiter.WaitN(ctx, burst); err != nil {
			return err
		}
		bytes -= burst
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
