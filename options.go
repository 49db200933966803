package hmsearch

import (
	"log/slog"

	"github.com/hupe1980/hmsearch/kvstore"
)

type options struct {
	backend          kvstore.Backend
	logger           *Logger
	metricsCollector MetricsCollector
	probeConcurrency int
}

// Option configures Init/Open behavior.
type Option func(*options)

// WithBackend selects the key-value store backend. The same backend must
// be used for Init and every later Open of a database.
//
// If nil is passed, the default LevelDB backend is used.
func WithBackend(b kvstore.Backend) Option {
	return func(o *options) {
		if b == nil {
			b = kvstore.LevelDBBackend{}
		}
		o.backend = b
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithProbeConcurrency sets the number of partition probes a lookup may
// run concurrently. The default of 1 keeps probe I/O fully sequential;
// candidate counting is commutative, so higher values change performance
// only, never results. Requires a store whose Get is thread-safe.
func WithProbeConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.probeConcurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		backend:          kvstore.LevelDBBackend{},
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		probeConcurrency: 1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
