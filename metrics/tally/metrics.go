// Package tally adapts uber-go/tally counters to the xeno.Counter contract.
package tally

import (
	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	tally "github.com/uber-go/tally/v4"
)

type Counter struct {
	Counter tally.Counter
}

var _ xeno.Counter = (*Counter)(nil)

// FromScope creates a named counter in the given scope.
func FromScope(scope tally.Scope, name string) *Counter {
	return &Counter{Counter: scope.Counter(name)}
}

func (c *Counter) Inc(delta int64) {
	c.Counter.Inc(delta)
}
