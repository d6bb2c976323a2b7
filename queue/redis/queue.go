package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "delivery-receipts"

// Queue is a Redis list implementation of xeno.ReceiptQueue. Receipts are
// appended to the tail of a single list and drained with an atomic
// read-and-clear, so a snapshot never splits a batch and survives process
// restarts.
type Queue struct {
	client *redis.Client
	key    string
	logger xeno.Logger
}

var _ xeno.ReceiptQueue = (*Queue)(nil)
var _ xeno.Loggable = (*Queue)(nil)

// New creates a receipt queue backed by the given Redis client. An empty key
// selects the default "delivery-receipts" list.
func New(client *redis.Client, key string) *Queue {
	if client == nil {
		panic("client is mandatory")
	}
	if key == "" {
		key = defaultQueueKey
	}
	return &Queue{
		client: client,
		key:    key,
		logger: &xeno.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (q *Queue) SetLogger(l xeno.Logger) {
	q.logger = l
}

// Enqueue appends the JSON-encoded receipt to the tail of the list.
func (q *Queue) Enqueue(ctx context.Context, r *xeno.DeliveryReceipt) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding the delivery receipt: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("appending a delivery receipt to '%s': %w", q.key, err)
	}
	return nil
}

// DrainAll removes and returns every buffered receipt in FIFO order. The
// read and the delete run inside a single MULTI/EXEC transaction so
// concurrent producers can never observe a half-drained list. Entries that
// fail to decode are discarded with a warning instead of poisoning the
// batch.
func (q *Queue) DrainAll(ctx context.Context) ([]*xeno.DeliveryReceipt, error) {
	var entries *redis.StringSliceCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		entries = pipe.LRange(ctx, q.key, 0, -1)
		pipe.Del(ctx, q.key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("draining '%s': %w", q.key, err)
	}

	raw := entries.Val()
	receipts := make([]*xeno.DeliveryReceipt, 0, len(raw))
	for _, item := range raw {
		var r xeno.DeliveryReceipt
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			q.logger.Warn(fmt.Sprintf("discarding a malformed receipt entry: %v", err))
			continue
		}
		receipts = append(receipts, &r)
	}
	return receipts, nil
}

// Size returns the current depth of the list.
func (q *Queue) Size(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("reading the length of '%s': %w", q.key, err)
	}
	return n, nil
}
