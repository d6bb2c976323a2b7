package xeno

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() Handler {
	return HandlerFunc(func(ctx context.Context, payload []byte) error {
		return nil
	})
}

func failingHandler() Handler {
	return HandlerFunc(func(ctx context.Context, payload []byte) error {
		return errors.New("boom")
	})
}

func TestNewPipeline(t *testing.T) {
	src := &fakeSource{name: "customer-stream"}

	testcases := []struct {
		name      string
		bindings  []StreamBinding
		wantPanic bool
	}{
		{
			name:      "valid binding",
			bindings:  []StreamBinding{{Source: src, Handler: okHandler()}},
			wantPanic: false,
		},
		{
			name:      "no bindings",
			bindings:  nil,
			wantPanic: true,
		},
		{
			name:      "binding without handler",
			bindings:  []StreamBinding{{Source: src}},
			wantPanic: true,
		},
		{
			name:      "binding without source",
			bindings:  []StreamBinding{{Handler: okHandler()}},
			wantPanic: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.wantPanic {
				assert.Panics(t, func() {
					NewPipeline(Settings{}, tc.bindings)
				})
			} else {
				assert.NotPanics(t, func() {
					NewPipeline(Settings{}, tc.bindings)
				})
			}
		})
	}
}

func TestRun_failsWhenGroupSetupFails(t *testing.T) {
	src := &fakeSource{name: "order-stream", ensureErr: errors.New("redis down")}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: okHandler()}})

	err := p.Run(context.Background())
	assert.ErrorContains(t, err, "order-stream")
}

func TestProcessOne_successAcksMessage(t *testing.T) {
	src := &fakeSource{
		name:    "customer-stream",
		pending: []*Message{{ID: "1-0", Payload: []byte(`{}`)}},
	}
	processed := &fakeCounter{}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: okHandler()}}, WithCounters(processed, nil))

	p.processOne(context.Background(), p.bindings[0])

	assert.Equal(t, []string{"1-0"}, src.acked)
	assert.Empty(t, src.deadLetters)
	assert.Equal(t, int64(1), processed.value())
}

func TestProcessOne_failureDeadLettersThenAcks(t *testing.T) {
	src := &fakeSource{
		name:    "order-stream",
		pending: []*Message{{ID: "2-0", Payload: []byte(`bad`)}},
	}
	dead := &fakeCounter{}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: failingHandler()}}, WithCounters(nil, dead))

	p.processOne(context.Background(), p.bindings[0])

	// dead-lettered and acked: it will not be retried automatically
	assert.Len(t, src.deadLetters, 1)
	assert.Equal(t, []byte(`bad`), src.deadLetters[0].Payload)
	assert.Equal(t, []string{"2-0"}, src.acked)
	assert.Equal(t, int64(1), dead.value())
}

func TestProcessOne_deadLetterFailureLeavesMessagePending(t *testing.T) {
	src := &fakeSource{
		name:          "order-stream",
		pending:       []*Message{{ID: "3-0", Payload: []byte(`bad`)}},
		deadLetterErr: errors.New("dlq unreachable"),
	}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: failingHandler()}})

	p.processOne(context.Background(), p.bindings[0])

	assert.Empty(t, src.acked)
}

func TestProcessOne_noMessageIsNoop(t *testing.T) {
	src := &fakeSource{name: "customer-stream"}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: failingHandler()}})

	p.processOne(context.Background(), p.bindings[0])

	assert.Empty(t, src.acked)
	assert.Empty(t, src.deadLetters)
}

func TestProcessOne_readErrorDoesNotStopProcessing(t *testing.T) {
	src := &fakeSource{name: "customer-stream", readErr: errors.New("timeout")}
	p := NewPipeline(Settings{}, []StreamBinding{{Source: src, Handler: okHandler()}})

	assert.NotPanics(t, func() {
		p.processOne(context.Background(), p.bindings[0])
	})
}

func TestRun_drainsPendingAndStopsOnCancel(t *testing.T) {
	customers := &fakeSource{
		name: "customer-stream",
		pending: []*Message{
			{ID: "1-0", Payload: []byte(`{}`)},
			{ID: "2-0", Payload: []byte(`{}`)},
		},
	}
	orders := &fakeSource{name: "order-stream"}
	p := NewPipeline(Settings{IdleWait: 1}, []StreamBinding{
		{Source: customers, Handler: okHandler()},
		{Source: orders, Handler: okHandler()},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		customers.mu.Lock()
		defer customers.mu.Unlock()
		return len(customers.acked) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("pipeline did not stop after context cancellation")
	}
	assert.Equal(t, 1, customers.ensureCalls)
	assert.Equal(t, 1, orders.ensureCalls)
}
