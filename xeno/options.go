package xeno

// worker is the configurable surface shared by the batch aggregator and the
// stream pipeline.
type worker interface {
	setLogger(Logger)
	setCounters(success Counter, failure Counter)
}

// Option allows optional configuration of a worker.
type Option func(w worker)

// WithLogger allows clients to configure an optional logger.
func WithLogger(l Logger) Option {
	return func(w worker) {
		if l != nil {
			w.setLogger(l)
		}
	}
}

// WithCounters allows clients to configure optional success and failure
// counters for observability.
func WithCounters(success Counter, failure Counter) Option {
	return func(w worker) {
		w.setCounters(success, failure)
	}
}
