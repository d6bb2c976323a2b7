package xeno

import (
	"context"
	"fmt"
	"time"
)

// StreamBinding pairs a stream source with the handler that processes its
// messages.
type StreamBinding struct {
	Source  StreamSource
	Handler Handler
}

// Pipeline ingests events from a set of streams through their consumer
// groups, delivering each message at least once to its handler and isolating
// poison messages in the per-stream dead letter log.
type Pipeline struct {
	settings     Settings
	logger       Logger
	bindings     []StreamBinding
	processedCtr Counter
	deadCtr      Counter
}

var _ worker = (*Pipeline)(nil)

// NewPipeline creates a pipeline over the provided stream bindings.
func NewPipeline(s Settings, bindings []StreamBinding, options ...Option) *Pipeline {
	if len(bindings) == 0 {
		panic("you must provide at least one stream binding")
	}
	for _, b := range bindings {
		if b.Source == nil || b.Handler == nil {
			panic("every stream binding needs a source and a handler")
		}
	}
	validateSettings(&s)

	p := &Pipeline{
		settings:     s,
		logger:       &NopLogger{},
		bindings:     bindings,
		processedCtr: &NopCounter{},
		deadCtr:      &NopCounter{},
	}
	for _, o := range options {
		o(p)
	}
	return p
}

func (p *Pipeline) setLogger(l Logger) {
	p.logger = l
}

func (p *Pipeline) setCounters(success Counter, failure Counter) {
	if success != nil {
		p.processedCtr = success
	}
	if failure != nil {
		p.deadCtr = failure
	}
}

// Run ensures every consumer group exists and then processes the streams
// round-robin until the context is cancelled. Read, handler and ack errors
// are logged and never terminate the loop; only the idempotent group setup
// can fail Run.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, b := range p.bindings {
		if err := b.Source.EnsureGroup(ctx); err != nil {
			return fmt.Errorf("ensuring the consumer group for stream '%s': %w", b.Source.Stream(), err)
		}
		p.logger.Debug(fmt.Sprintf("consumer group ready on stream '%s'", b.Source.Stream()))
	}

	for {
		for _, b := range p.bindings {
			if ctx.Err() != nil {
				break
			}
			p.processOne(ctx, b)
		}
		select {
		case <-ctx.Done():
			p.logger.Info("stream pipeline stopped")
			return ctx.Err()
		case <-time.After(p.settings.IdleWait):
		}
	}
}

// processOne reads at most one message from the binding's stream and settles
// it: ack on handler success, dead-letter then ack on handler failure. When
// the dead letter copy itself fails the message is left pending so it is not
// silently lost.
func (p *Pipeline) processOne(ctx context.Context, b StreamBinding) {
	msg, err := b.Source.ReadOne(ctx)
	if err != nil {
		p.logger.Error(fmt.Sprintf("reading from stream '%s'", b.Source.Stream()), err)
		return
	}
	if msg == nil {
		return
	}

	if handleErr := b.Handler.Handle(ctx, msg.Payload); handleErr != nil {
		p.logger.Warn(fmt.Sprintf("message '%s' on stream '%s' failed, moving to the dead letter log: %v", msg.ID, b.Source.Stream(), handleErr))
		if dlErr := b.Source.DeadLetter(ctx, msg); dlErr != nil {
			p.logger.Error(fmt.Sprintf("copying message '%s' to the dead letter log", msg.ID), dlErr)
			return
		}
		p.deadCtr.Inc(1)
	} else {
		p.processedCtr.Inc(1)
	}

	if err := b.Source.Ack(ctx, msg.ID); err != nil {
		p.logger.Error(fmt.Sprintf("acknowledging message '%s' on stream '%s'", msg.ID, b.Source.Stream()), err)
	}
}
