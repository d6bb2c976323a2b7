package xeno

import "context"

// ReceiptQueue buffers delivery receipts between the vendor-facing producers
// and the batch aggregator. Producers only ever append; the aggregator is the
// only consumer and always takes the whole buffer at once.
type ReceiptQueue interface {

	// Enqueue appends a receipt to the tail of the queue. It must never block
	// the caller on downstream aggregation; it fails only when the backing
	// store is unreachable.
	Enqueue(ctx context.Context, r *DeliveryReceipt) error

	// DrainAll atomically removes and returns every buffered receipt in FIFO
	// order. An empty queue yields an empty slice and no error. Partial or
	// peek reads are deliberately not part of the contract so the batch
	// boundary stays a single atomic snapshot.
	DrainAll(ctx context.Context) ([]*DeliveryReceipt, error)

	// Size returns the current queue depth. Observability only; callers must
	// not use it for control flow.
	Size(ctx context.Context) (int64, error)
}
