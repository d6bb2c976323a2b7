// Package test provides shared fakes for the unit tests of the ingestion
// core.
package test

import (
	"context"
	"sync"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
)

// TestLogger records every logged line for assertions.
type TestLogger struct {
	mu    sync.Mutex
	Lines []string
}

var _ xeno.Logger = (*TestLogger)(nil)

func (l *TestLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, msg)
}

func (l *TestLogger) Debug(msg string)            { l.record(msg) }
func (l *TestLogger) Info(msg string)             { l.record(msg) }
func (l *TestLogger) Warn(msg string)             { l.record(msg) }
func (l *TestLogger) Error(msg string, err error) { l.record(msg) }

// TestCounter accumulates increments for assertions.
type TestCounter struct {
	mu  sync.Mutex
	Ctr int64
}

var _ xeno.Counter = (*TestCounter)(nil)

func (c *TestCounter) Inc(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Ctr += delta
}

func (c *TestCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Ctr
}

// MockQueue is an in-memory xeno.ReceiptQueue with programmable failures.
type MockQueue struct {
	mu         sync.Mutex
	Receipts   []*xeno.DeliveryReceipt
	EnqueueErr error
	DrainErr   error
	Drains     int
}

var _ xeno.ReceiptQueue = (*MockQueue)(nil)

func (q *MockQueue) Enqueue(ctx context.Context, r *xeno.DeliveryReceipt) error {
	if q.EnqueueErr != nil {
		return q.EnqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Receipts = append(q.Receipts, r)
	return nil
}

func (q *MockQueue) DrainAll(ctx context.Context) ([]*xeno.DeliveryReceipt, error) {
	if q.DrainErr != nil {
		return nil, q.DrainErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Drains++
	drained := q.Receipts
	q.Receipts = nil
	return drained, nil
}

func (q *MockQueue) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.Receipts)), nil
}

// MockLogStore records bulk upserts.
type MockLogStore struct {
	mu      sync.Mutex
	Batches [][]*xeno.CommunicationLogUpsert
	Err     error
}

var _ xeno.CommunicationLogStore = (*MockLogStore)(nil)

func (s *MockLogStore) BulkUpsert(ctx context.Context, rows []*xeno.CommunicationLogUpsert) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Batches = append(s.Batches, rows)
	return nil
}

// MockCampaignStore accumulates delivery stat increments per campaign.
type MockCampaignStore struct {
	mu     sync.Mutex
	Totals map[string]xeno.CampaignDelta
	Err    error
}

var _ xeno.CampaignStore = (*MockCampaignStore)(nil)

func (s *MockCampaignStore) IncrementDeliveryStats(ctx context.Context, campaignID string, delta xeno.CampaignDelta) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Totals == nil {
		s.Totals = make(map[string]xeno.CampaignDelta)
	}
	total := s.Totals[campaignID]
	total.Sent += delta.Sent
	total.Failed += delta.Failed
	s.Totals[campaignID] = total
	return nil
}

// MockCustomerStore is a map-backed xeno.CustomerStore keyed by email.
type MockCustomerStore struct {
	mu        sync.Mutex
	Customers map[string]*xeno.Customer
	FindErr   error
	CreateErr error
}

var _ xeno.CustomerStore = (*MockCustomerStore)(nil)

func (s *MockCustomerStore) FindByEmail(ctx context.Context, email string) (*xeno.Customer, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Customers[email], nil
}

func (s *MockCustomerStore) Create(ctx context.Context, c *xeno.Customer) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Customers == nil {
		s.Customers = make(map[string]*xeno.Customer)
	}
	if c.ID == "" {
		c.ID = "customer-" + c.Email
	}
	s.Customers[c.Email] = c
	return nil
}

func (s *MockCustomerStore) List(ctx context.Context) ([]*xeno.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*xeno.Customer, 0, len(s.Customers))
	for _, c := range s.Customers {
		out = append(out, c)
	}
	return out, nil
}

// MockOrderStore records persisted orders and mirrors the spend increment on
// a sibling MockCustomerStore when provided.
type MockOrderStore struct {
	mu        sync.Mutex
	Orders    []*xeno.Order
	Customers *MockCustomerStore
	Err       error
}

var _ xeno.OrderStore = (*MockOrderStore)(nil)

func (s *MockOrderStore) CreateWithSpend(ctx context.Context, o *xeno.Order) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders = append(s.Orders, o)
	if s.Customers != nil {
		if c := s.Customers.Customers[o.CustomerEmail]; c != nil {
			c.TotalSpend += o.Amount
		}
	}
	return nil
}

// MockSource is a scripted xeno.StreamSource for pipeline tests.
type MockSource struct {
	mu          sync.Mutex
	Name        string
	Pending     []*xeno.Message
	Acked       []string
	DeadLetters []*xeno.Message

	EnsureErr     error
	ReadErr       error
	DeadLetterErr error
	EnsureCalls   int
}

var _ xeno.StreamSource = (*MockSource)(nil)

func (s *MockSource) Stream() string {
	return s.Name
}

func (s *MockSource) EnsureGroup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EnsureCalls++
	return s.EnsureErr
}

func (s *MockSource) ReadOne(ctx context.Context) (*xeno.Message, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Pending) == 0 {
		return nil, nil
	}
	m := s.Pending[0]
	s.Pending = s.Pending[1:]
	return m, nil
}

func (s *MockSource) Ack(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Acked = append(s.Acked, id)
	return nil
}

func (s *MockSource) DeadLetter(ctx context.Context, m *xeno.Message) error {
	if s.DeadLetterErr != nil {
		return s.DeadLetterErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeadLetters = append(s.DeadLetters, m)
	return nil
}

// MockProducer records published payloads per stream.
type MockProducer struct {
	mu        sync.Mutex
	Published map[string][][]byte
	Err       error
}

var _ xeno.StreamProducer = (*MockProducer)(nil)

func (p *MockProducer) Publish(ctx context.Context, stream string, payload []byte) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Published == nil {
		p.Published = make(map[string][][]byte)
	}
	p.Published[stream] = append(p.Published[stream], payload)
	return "1-0", nil
}
