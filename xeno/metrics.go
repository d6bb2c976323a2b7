package xeno

// Counter is a monotonically increasing metric. The aggregator and the
// pipeline report folded, lost, processed and dead-lettered totals through
// it; the tally adapter provides the production implementation.
type Counter interface {
	// Inc increments the counter by a delta.
	Inc(delta int64)
}

// NopCounter drops all increments. It is the default until counters are
// injected via WithCounters.
type NopCounter struct{}

var _ Counter = (*NopCounter)(nil)

func (*NopCounter) Inc(delta int64) {} //nolint:all
