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

const testBlock = 20 * time.Millisecond

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestEnsureGroup_isIdempotent(t *testing.T) {
	client, _ := newTestClient(t)
	src := NewSource(client, xeno.CustomerStream, xeno.CustomerGroup, "consumer-1", testBlock)
	ctx := context.Background()

	require.NoError(t, src.EnsureGroup(ctx))
	// creating the same group twice must not raise an error
	require.NoError(t, src.EnsureGroup(ctx))

	// the group still works after the second create
	producer := NewProducer(client)
	_, err := producer.Publish(ctx, xeno.CustomerStream, []byte(`{}`))
	require.NoError(t, err)

	msg, err := src.ReadOne(ctx)
	require.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestReadOne_deliversPublishedPayload(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	src := NewSource(client, xeno.CustomerStream, xeno.CustomerGroup, "consumer-1", testBlock)
	require.NoError(t, src.EnsureGroup(ctx))

	producer := NewProducer(client)
	id, err := producer.Publish(ctx, xeno.CustomerStream, []byte(`{"email":"a@b.c"}`))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	msg, err := src.ReadOne(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, []byte(`{"email":"a@b.c"}`), msg.Payload)
}

func TestReadOne_emptyStream(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	src := NewSource(client, xeno.OrderStream, xeno.OrderGroup, "consumer-1", testBlock)
	require.NoError(t, src.EnsureGroup(ctx))

	msg, err := src.ReadOne(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestAck_clearsPendingSet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	src := NewSource(client, xeno.CustomerStream, xeno.CustomerGroup, "consumer-1", testBlock)
	require.NoError(t, src.EnsureGroup(ctx))

	producer := NewProducer(client)
	_, err := producer.Publish(ctx, xeno.CustomerStream, []byte(`{}`))
	require.NoError(t, err)

	msg, err := src.ReadOne(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)

	pending, err := client.XPending(ctx, xeno.CustomerStream, xeno.CustomerGroup).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	require.NoError(t, src.Ack(ctx, msg.ID))

	pending, err = client.XPending(ctx, xeno.CustomerStream, xeno.CustomerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestDeadLetter_copiesPayloadToDlqStream(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	src := NewSource(client, xeno.OrderStream, xeno.OrderGroup, "consumer-1", testBlock)
	require.NoError(t, src.EnsureGroup(ctx))

	msg := &xeno.Message{ID: "1-0", Payload: []byte(`{"customerEmail":"missing@x.y"}`)}
	require.NoError(t, src.DeadLetter(ctx, msg))

	entries, err := client.XRange(ctx, xeno.OrderStream+xeno.DeadLetterSuffix, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, `{"customerEmail":"missing@x.y"}`, entries[0].Values[deadLetterField])
}

func TestNewSource_validation(t *testing.T) {
	client, _ := newTestClient(t)

	assert.Panics(t, func() {
		NewSource(nil, "s", "g", "c", testBlock)
	})
	assert.Panics(t, func() {
		NewSource(client, "", "g", "c", testBlock)
	})
	assert.Panics(t, func() {
		NewProducer(nil)
	})
}
