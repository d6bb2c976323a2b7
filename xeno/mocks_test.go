package xeno

import (
	"context"
	"sync"
)

// In-package fakes. The shared mocks in the root test package cannot be used
// here because that package imports xeno.

type fakeQueue struct {
	mu       sync.Mutex
	receipts []*DeliveryReceipt
	drainErr error
	drains   int
}

func (q *fakeQueue) Enqueue(ctx context.Context, r *DeliveryReceipt) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.receipts = append(q.receipts, r)
	return nil
}

func (q *fakeQueue) DrainAll(ctx context.Context) ([]*DeliveryReceipt, error) {
	if q.drainErr != nil {
		return nil, q.drainErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.drains++
	drained := q.receipts
	q.receipts = nil
	return drained, nil
}

func (q *fakeQueue) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.receipts)), nil
}

type fakeLogStore struct {
	batches [][]*CommunicationLogUpsert
	err     error
}

func (s *fakeLogStore) BulkUpsert(ctx context.Context, rows []*CommunicationLogUpsert) error {
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, rows)
	return nil
}

type fakeCampaignStore struct {
	totals map[string]CampaignDelta
	err    error
	errFor map[string]error
}

func (s *fakeCampaignStore) IncrementDeliveryStats(ctx context.Context, campaignID string, delta CampaignDelta) error {
	if s.err != nil {
		return s.err
	}
	if err := s.errFor[campaignID]; err != nil {
		return err
	}
	if s.totals == nil {
		s.totals = make(map[string]CampaignDelta)
	}
	total := s.totals[campaignID]
	total.Sent += delta.Sent
	total.Failed += delta.Failed
	s.totals[campaignID] = total
	return nil
}

type fakeCounter struct {
	mu  sync.Mutex
	ctr int64
}

func (c *fakeCounter) Inc(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctr += delta
}

func (c *fakeCounter) value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctr
}

type fakeSource struct {
	mu            sync.Mutex
	name          string
	pending       []*Message
	acked         []string
	deadLetters   []*Message
	ensureErr     error
	readErr       error
	deadLetterErr error
	ensureCalls   int
}

func (s *fakeSource) Stream() string {
	return s.name
}

func (s *fakeSource) EnsureGroup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCalls++
	return s.ensureErr
}

func (s *fakeSource) ReadOne(ctx context.Context) (*Message, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil, nil
	}
	m := s.pending[0]
	s.pending = s.pending[1:]
	return m, nil
}

func (s *fakeSource) Ack(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acked = append(s.acked, id)
	return nil
}

func (s *fakeSource) DeadLetter(ctx context.Context, m *Message) error {
	if s.deadLetterErr != nil {
		return s.deadLetterErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters = append(s.deadLetters, m)
	return nil
}
