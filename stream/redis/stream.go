package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AryanGupta9719/Xeno-CRM/xeno"
	"github.com/redis/go-redis/v9"
)

// payloadField is the stream entry field carrying the JSON event payload.
// Dead letter copies carry the same bytes under the "message" field.
const (
	payloadField    = "payload"
	deadLetterField = "message"
)

// Source reads one Redis stream through a named consumer group and
// implements xeno.StreamSource.
type Source struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	block    time.Duration
	logger   xeno.Logger
}

var _ xeno.StreamSource = (*Source)(nil)
var _ xeno.Loggable = (*Source)(nil)

// NewSource creates a consumer-group source for the given stream.
func NewSource(client *redis.Client, stream, group, consumer string, block time.Duration) *Source {
	if client == nil {
		panic("client is mandatory")
	}
	if stream == "" || group == "" || consumer == "" {
		panic("stream, group and consumer are mandatory")
	}
	if block <= 0 {
		block = 2 * time.Second
	}
	return &Source{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		block:    block,
		logger:   &xeno.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (s *Source) SetLogger(l xeno.Logger) {
	s.logger = l
}

// Stream returns the name of the underlying stream.
func (s *Source) Stream() string {
	return s.stream
}

// EnsureGroup creates the consumer group at the beginning of the stream,
// creating the stream itself when absent. A BUSYGROUP reply means the group
// already exists and is treated as success.
func (s *Source) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("creating consumer group '%s' on '%s': %w", s.group, s.stream, err)
	}
	return nil
}

// ReadOne reads at most one new message for the group, blocking up to the
// configured window. It returns (nil, nil) when the window elapses without a
// message.
func (s *Source) ReadOne(ctx context.Context) (*xeno.Message, error) {
	res, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    s.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading from '%s' as '%s': %w", s.stream, s.consumer, err)
	}

	for _, str := range res {
		for _, m := range str.Messages {
			return &xeno.Message{ID: m.ID, Payload: payloadOf(m.Values)}, nil
		}
	}
	return nil, nil
}

// Ack removes the message from the group's pending set.
func (s *Source) Ack(ctx context.Context, id string) error {
	if err := s.client.XAck(ctx, s.stream, s.group, id).Err(); err != nil {
		return fmt.Errorf("acking '%s' on '%s': %w", id, s.stream, err)
	}
	return nil
}

// DeadLetter copies the raw payload to "<stream>-dlq".
func (s *Source) DeadLetter(ctx context.Context, m *xeno.Message) error {
	dlq := s.stream + xeno.DeadLetterSuffix
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: dlq,
		Values: map[string]interface{}{deadLetterField: string(m.Payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("appending message '%s' to '%s': %w", m.ID, dlq, err)
	}
	s.logger.Debug(fmt.Sprintf("message '%s' copied to '%s'", m.ID, dlq))
	return nil
}

func payloadOf(values map[string]interface{}) []byte {
	if v, ok := values[payloadField]; ok {
		if s, ok := v.(string); ok {
			return []byte(s)
		}
	}
	return nil
}

// Producer appends event payloads to Redis streams and implements
// xeno.StreamProducer.
type Producer struct {
	client *redis.Client
}

var _ xeno.StreamProducer = (*Producer)(nil)

// NewProducer creates a stream producer over the given Redis client.
func NewProducer(client *redis.Client) *Producer {
	if client == nil {
		panic("client is mandatory")
	}
	return &Producer{client: client}
}

// Publish appends the payload to the stream and returns the assigned id.
func (p *Producer) Publish(ctx context.Context, stream string, payload []byte) (string, error) {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{payloadField: string(payload)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("appending to '%s': %w", stream, err)
	}
	return id, nil
}
