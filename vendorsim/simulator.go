// Package vendorsim simulates the external messaging vendor: each send
// resolves after a bounded random delay with a fixed success probability and
// reports back through the receipt queue.
package vendorsim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
)

const (
	defaultMinDelay    = 200 * time.Millisecond
	defaultMaxDelay    = 800 * time.Millisecond
	defaultSuccessRate = 0.9
)

// Simulator produces delivery receipts for simulated sends. The core only
// relies on receipts eventually arriving via the queue, never on timing or
// success ratio.
type Simulator struct {
	queue       xeno.ReceiptQueue
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
	logger      xeno.Logger

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand
}

// Option allows optional configuration of a Simulator.
type Option func(s *Simulator)

// WithDelayBounds overrides the simulated delivery latency window.
func WithDelayBounds(min, max time.Duration) Option {
	return func(s *Simulator) {
		if min >= 0 && max >= min {
			s.minDelay = min
			s.maxDelay = max
		}
	}
}

// WithSuccessRate overrides the probability of a SENT outcome.
func WithSuccessRate(p float64) Option {
	return func(s *Simulator) {
		if p >= 0 && p <= 1 {
			s.successRate = p
		}
	}
}

// WithLogger allows clients to configure an optional logger.
func WithLogger(l xeno.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a vendor send simulator reporting into the given queue.
func New(queue xeno.ReceiptQueue, options ...Option) *Simulator {
	if queue == nil {
		panic("queue is mandatory")
	}
	s := &Simulator{
		queue:       queue,
		minDelay:    defaultMinDelay,
		maxDelay:    defaultMaxDelay,
		successRate: defaultSuccessRate,
		logger:      &xeno.NopLogger{},
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Send simulates one vendor delivery: it waits a random delay, resolves to
// SENT or FAILED, enqueues the resulting receipt and returns it. An enqueue
// failure is surfaced to the caller, who owns the retry policy.
func (s *Simulator) Send(ctx context.Context, userID, campaignID, message string) (*xeno.DeliveryReceipt, error) {
	if delay := s.randomDelay(); delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	status := xeno.StatusFailed
	if s.roll() < s.successRate {
		status = xeno.StatusSent
	}
	receipt := &xeno.DeliveryReceipt{
		UserID:     userID,
		CampaignID: campaignID,
		Status:     status,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, receipt); err != nil {
		return nil, fmt.Errorf("enqueueing the delivery receipt: %w", err)
	}
	s.logger.Debug(fmt.Sprintf("simulated %s delivery for user '%s' in campaign '%s' (%d message bytes)", status, userID, campaignID, len(message)))
	return receipt, nil
}

func (s *Simulator) randomDelay() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minDelay + time.Duration(s.rnd.Int63n(int64(s.maxDelay-s.minDelay)+1))
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}
