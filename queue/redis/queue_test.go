package redis

import (
	"context"
	"testing"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ""), mr
}

func TestNew(t *testing.T) {
	assert.Panics(t, func() {
		New(nil, "")
	})
}

func TestEnqueueAndSize(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := q.Enqueue(ctx, &xeno.DeliveryReceipt{
			UserID:     "u1",
			CampaignID: "c1",
			Status:     xeno.StatusSent,
			Timestamp:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	n, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestDrainAll_returnsFIFOAndClears(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &xeno.DeliveryReceipt{UserID: "u1", CampaignID: "c1", Status: xeno.StatusSent}))
	require.NoError(t, q.Enqueue(ctx, &xeno.DeliveryReceipt{UserID: "u2", CampaignID: "c1", Status: xeno.StatusFailed}))
	require.NoError(t, q.Enqueue(ctx, &xeno.DeliveryReceipt{UserID: "u3", CampaignID: "c2", Status: xeno.StatusSent}))

	receipts, err := q.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	assert.Equal(t, "u1", receipts[0].UserID)
	assert.Equal(t, "u2", receipts[1].UserID)
	assert.Equal(t, "u3", receipts[2].UserID)
	assert.Equal(t, xeno.StatusFailed, receipts[1].Status)

	n, err := q.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDrainAll_emptyQueue(t *testing.T) {
	q, _ := newTestQueue(t)

	receipts, err := q.DrainAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestDrainAll_skipsMalformedEntries(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &xeno.DeliveryReceipt{UserID: "u1", CampaignID: "c1", Status: xeno.StatusSent}))
	_, err := mr.Push(defaultQueueKey, "not-json")
	require.NoError(t, err)
	require.NoError(t, q.Enqueue(ctx, &xeno.DeliveryReceipt{UserID: "u2", CampaignID: "c1", Status: xeno.StatusSent}))

	receipts, err := q.DrainAll(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, "u1", receipts[0].UserID)
	assert.Equal(t, "u2", receipts[1].UserID)
}

func TestEnqueue_unreachableStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	q := New(client, "")
	mr.Close()

	err := q.Enqueue(context.Background(), &xeno.DeliveryReceipt{UserID: "u1", CampaignID: "c1", Status: xeno.StatusSent})
	assert.Error(t, err)
}
