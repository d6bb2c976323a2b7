package xeno

import "time"

// DeliveryStatus is the final state reported by the messaging vendor for a
// single send attempt.
type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "SENT"
	StatusFailed DeliveryStatus = "FAILED"
)

// Valid reports whether s is one of the two vendor-reported statuses.
func (s DeliveryStatus) Valid() bool {
	return s == StatusSent || s == StatusFailed
}

// DeliveryReceipt is a single vendor callback for one (user, campaign) send.
// Receipts only live inside the receipt queue until the aggregator drains
// them and folds them into durable counters.
type DeliveryReceipt struct {
	UserID     string         `json:"userId"`
	CampaignID string         `json:"campaignId"`
	Status     DeliveryStatus `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
}

// CommunicationLogUpsert is one folded (user, campaign) row of a drained
// batch: the latest status observed for the pair plus the additive deltas
// accumulated from every receipt in the batch.
type CommunicationLogUpsert struct {
	UserID      string
	CampaignID  string
	Status      DeliveryStatus
	SentDelta   int
	FailedDelta int
	LastUpdated time.Time
}

// CampaignDelta carries the per-campaign sent/failed increments of a single
// aggregation batch. Deltas are always applied as increments so consecutive
// batches compose by addition.
type CampaignDelta struct {
	Sent   int
	Failed int
}

// Customer is a CRM customer record. Customers are created by the ingestion
// pipeline and deduplicated by email.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	TotalSpend float64   `json:"totalSpend"`
	VisitCount int       `json:"visitCount"`
	LastVisit  time.Time `json:"lastVisit"`
}

// Order is a customer order ingested from the order stream. Persisting an
// order also adds Amount to the owning customer's total spend.
type Order struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"orderId"`
	CustomerID    string    `json:"customerId"`
	CustomerEmail string    `json:"customerEmail"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}
