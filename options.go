package parcon

import (
	"log/slog"

	"github.com/parcon/parcon/resource"
	"github.com/parcon/parcon/snapshot"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	controller       *resource.Controller
	offHeap          bool
	codec            snapshot.Codec
}

// Option configures container construction.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := parcon.NewJSONLogger(slog.LevelInfo)
//	set, _ := parcon.NewSet[uint64](1<<20, parcon.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets
// it. Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &parcon.BasicMetricsCollector{}
//	set, _ := parcon.NewSet[uint64](1<<20, parcon.WithMetricsCollector(metrics))
//	// ... use set ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController attaches a resource controller. Backing
// storage is charged against its memory limit at construction and
// refunded on Close; snapshot saves and loads take a worker slot and
// respect its IO throughput limit.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithOffHeap places container state bits in anonymous memory mappings
// outside the Go heap, keeping very large occupancy arrays out of GC
// mark phases.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithCodec configures the compression codec used for snapshots.
// The default is snapshot.CodecZSTD.
func WithCodec(c snapshot.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		codec:            snapshot.CodecZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
