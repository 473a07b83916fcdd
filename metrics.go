package parcon

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational
// metrics. Implement it to integrate with monitoring systems like
// Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    insertCounter prometheus.Counter
//	    findHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordInsert(duration time.Duration, err error) {
//	    p.insertCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	RecordInsert(duration time.Duration, err error)

	// RecordFind is called after each find/contains operation.
	// hit is true when the key was present.
	RecordFind(hit bool, duration time.Duration)

	// RecordErase is called after each erase operation.
	// erased is true when this caller removed the key.
	RecordErase(erased bool, duration time.Duration)

	// RecordAllocate is called after each slot allocation.
	RecordAllocate(duration time.Duration, err error)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(op string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)           {}
func (NoopMetricsCollector) RecordFind(bool, time.Duration)              {}
func (NoopMetricsCollector) RecordErase(bool, time.Duration)             {}
func (NoopMetricsCollector) RecordAllocate(time.Duration, error)         {}
func (NoopMetricsCollector) RecordSnapshot(string, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external
// dependencies. Safe for concurrent use.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	FindCount        atomic.Int64
	FindHits         atomic.Int64
	FindTotalNanos   atomic.Int64
	EraseCount       atomic.Int64
	EraseWins        atomic.Int64
	AllocateCount    atomic.Int64
	AllocateErrors   atomic.Int64
	SnapshotCount    atomic.Int64
	SnapshotErrors   atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	b.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(hit bool, duration time.Duration) {
	b.FindCount.Add(1)
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.FindHits.Add(1)
	}
}

// RecordErase implements MetricsCollector.
func (b *BasicMetricsCollector) RecordErase(erased bool, duration time.Duration) {
	b.EraseCount.Add(1)
	if erased {
		b.EraseWins.Add(1)
	}
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(duration time.Duration, err error) {
	b.AllocateCount.Add(1)
	if err != nil {
		b.AllocateErrors.Add(1)
	}
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(_ string, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		InsertCount:    b.InsertCount.Load(),
		InsertErrors:   b.InsertErrors.Load(),
		InsertAvgNanos: avg(b.InsertTotalNanos.Load(), b.InsertCount.Load()),
		FindCount:      b.FindCount.Load(),
		FindHits:       b.FindHits.Load(),
		FindAvgNanos:   avg(b.FindTotalNanos.Load(), b.FindCount.Load()),
		EraseCount:     b.EraseCount.Load(),
		EraseWins:      b.EraseWins.Load(),
		AllocateCount:  b.AllocateCount.Load(),
		AllocateErrors: b.AllocateErrors.Load(),
		SnapshotCount:  b.SnapshotCount.Load(),
		SnapshotErrors: b.SnapshotErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	InsertCount    int64
	InsertErrors   int64
	InsertAvgNanos int64
	FindCount      int64
	FindHits       int64
	FindAvgNanos   int64
	EraseCount     int64
	EraseWins      int64
	AllocateCount  int64
	AllocateErrors int64
	SnapshotCount  int64
	SnapshotErrors int64
}
