package xeno

import (
	"time"
)

const (
	defaultFlushInterval time.Duration = time.Second * 10
	defaultReadBlock     time.Duration = time.Second * 2
	defaultIdleWait      time.Duration = time.Second
)

// Settings holds the worker configuration shared by the batch aggregator and
// the stream ingestion pipeline.
type Settings struct {
	FlushInterval time.Duration // interval between receipt queue drains by the aggregator
	ReadBlock     time.Duration // how long a stream read blocks waiting for a new message
	IdleWait      time.Duration // pause between pipeline passes over the configured streams
}

// validateSettings validates the established settings and sets defaults if needed.
func validateSettings(s *Settings) {
	if s.FlushInterval <= 0 {
		s.FlushInterval = defaultFlushInterval
	}
	if s.ReadBlock <= 0 {
		s.ReadBlock = defaultReadBlock
	}
	if s.IdleWait <= 0 {
		s.IdleWait = defaultIdleWait
	}
}
