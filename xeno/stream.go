package xeno

import "context"

// Stream and consumer group names used by the ingestion pipeline. Failed
// messages are copied to "<stream>-dlq".
const (
	CustomerStream = "customer-stream"
	OrderStream    = "order-stream"
	CustomerGroup  = "customer-processor"
	OrderGroup     = "order-processor"

	DeadLetterSuffix = "-dlq"
)

// Message is a single entry delivered to a consumer group member.
type Message struct {
	ID      string // opaque monotonic stream identifier
	Payload []byte // raw event payload
}

// StreamSource is one durable append log read through a named consumer group.
type StreamSource interface {

	// Stream returns the name of the underlying stream.
	Stream() string

	// EnsureGroup creates the consumer group starting at the beginning of the
	// log. Creation is idempotent: an already existing group is a success.
	EnsureGroup(ctx context.Context) error

	// ReadOne reads at most one new, unclaimed message for the group,
	// blocking briefly when none is immediately available. It returns
	// (nil, nil) when no message arrived within the block window.
	ReadOne(ctx context.Context) (*Message, error)

	// Ack removes a delivered message from the group's pending set. An acked
	// id never reappears in the pending set for this group.
	Ack(ctx context.Context, id string) error

	// DeadLetter copies the raw message to the per-stream dead letter log.
	// The original message must still be acked by the caller afterwards.
	DeadLetter(ctx context.Context, m *Message) error
}

// StreamProducer appends event payloads to a named stream.
type StreamProducer interface {

	// Publish appends the payload to the stream and returns the assigned
	// message id.
	Publish(ctx context.Context, stream string, payload []byte) (string, error)
}

// Handler processes the payload of one stream message. A nil return
// acknowledges the message; an error routes it to the dead letter log.
// Handlers must be idempotent because redelivery across process restarts is
// possible.
type Handler interface {
	Handle(ctx context.Context, payload []byte) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, payload []byte) error

func (f HandlerFunc) Handle(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}
