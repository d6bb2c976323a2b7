package xeno

import "context"

// CommunicationLogStore manages the per-(user, campaign) delivery counters.
type CommunicationLogStore interface {

	// BulkUpsert applies a whole batch of folded rows in a bounded number of
	// round-trips. For a new pair the row is created; for an existing pair the
	// status and last-updated instants are replaced and the counters are
	// incremented by the row deltas, never overwritten.
	BulkUpsert(ctx context.Context, rows []*CommunicationLogUpsert) error
}

// CampaignStore mutates the campaign aggregates owned by the aggregator.
type CampaignStore interface {

	// IncrementDeliveryStats adds the batch deltas to the campaign's
	// sent/failed totals. Increments keep the totals equal to the sum of the
	// per-user communication log counters for the campaign.
	IncrementDeliveryStats(ctx context.Context, campaignID string, delta CampaignDelta) error
}

// CustomerStore manages customer records created by the ingestion pipeline.
type CustomerStore interface {

	// FindByEmail returns the customer with the given email, or (nil, nil)
	// when no such customer exists.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// Create persists a new customer record.
	Create(ctx context.Context, c *Customer) error

	// List returns all customer records.
	List(ctx context.Context) ([]*Customer, error)
}

// OrderStore persists orders ingested from the order stream.
type OrderStore interface {

	// CreateWithSpend persists the order and adds its amount to the owning
	// customer's total spend within a single transaction.
	CreateWithSpend(ctx context.Context, o *Order) error
}
