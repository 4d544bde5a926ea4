// Package broker provides an in-memory message broker: named FIFO queues
// with enqueue and long-poll dequeue.
//
// This is the main package users should import. Queues are created lazily on
// first reference; a dequeue may block up to a caller-supplied wait for a
// message to arrive.
//
// Basic usage:
//
//	b := broker.New()
//	defer b.Close()
//
//	// Producer
//	b.Enqueue(ctx, "first", json.RawMessage(`{"message":"message 1"}`))
//
//	// Consumer: waits up to 3s for a message
//	env, err := b.Dequeue(ctx, "first", 3*time.Second)
//	if errors.Is(err, broker.ErrNoMessage) {
//	    // nothing arrived in time
//	}
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jdziat/simple-message-broker/pkg/core"
	"github.com/jdziat/simple-message-broker/pkg/queue"
	"github.com/jdziat/simple-message-broker/pkg/registry"
	"github.com/jdziat/simple-message-broker/pkg/security"
)

// Broker is the operation surface consumed by transport layers. It owns a
// queue registry and validates input before delegating to the queues; the
// queues own all message and waiter synchronization.
type Broker struct {
	registry *registry.Registry
	logger   *slog.Logger
	maxWait  time.Duration

	events *eventBus
}

// New creates a Broker.
func New(opts ...Option) *Broker {
	cfg := newConfig()
	for _, opt := range opts {
		opt.Apply(cfg)
	}

	regOpts := []registry.Option{}
	if cfg.maxQueues > 0 {
		regOpts = append(regOpts, registry.WithMaxQueues(cfg.maxQueues))
	}
	if cfg.maxMessagesPerQueue > 0 {
		regOpts = append(regOpts, registry.WithQueueOptions(queue.WithMaxMessages(cfg.maxMessagesPerQueue)))
	}

	return &Broker{
		registry: registry.New(regOpts...),
		logger:   cfg.logger,
		maxWait:  cfg.maxWait,
		events:   newEventBus(),
	}
}

// Enqueue appends payload to the named queue, creating the queue on first
// reference. Returns the new message's ID. The payload must be valid JSON
// within the size limit; it is stored verbatim and never inspected.
func (b *Broker) Enqueue(_ context.Context, queueName string, payload json.RawMessage) (string, error) {
	if err := security.ValidateQueueName(queueName); err != nil {
		return "", err
	}
	if err := security.ValidatePayload(payload); err != nil {
		return "", err
	}

	q, err := b.registry.GetOrCreate(queueName)
	if err != nil {
		return "", err
	}
	env, err := q.Enqueue(payload)
	if err != nil {
		return "", err
	}

	b.logger.Debug("message enqueued", "queue", queueName, "id", env.ID)
	b.events.emit(&core.MessageEnqueued{
		Queue:     queueName,
		MessageID: env.ID,
		Timestamp: env.EnqueuedAt,
	})
	return env.ID, nil
}

// Dequeue removes and returns the oldest message from the named queue,
// creating the queue on first reference.
//
// With wait == 0 an empty queue returns ErrNoMessage immediately. With
// wait > 0 the call blocks until a message arrives, the wait elapses
// (ErrNoMessage), or ctx is cancelled. Waits are clamped to the broker's
// maximum; negative waits are rejected with ErrInvalidWait.
func (b *Broker) Dequeue(ctx context.Context, queueName string, wait time.Duration) (*core.Envelope, error) {
	if err := security.ValidateQueueName(queueName); err != nil {
		return nil, err
	}
	if err := security.ValidateWait(wait); err != nil {
		return nil, err
	}
	if wait > b.maxWait {
		wait = b.maxWait
	}

	q, err := b.registry.GetOrCreate(queueName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	env, err := q.Dequeue(ctx, wait)
	if err != nil {
		if errors.Is(err, core.ErrNoMessage) && wait > 0 {
			b.events.emit(&core.WaitExpired{
				Queue:     queueName,
				Waited:    time.Since(start),
				Timestamp: time.Now(),
			})
		}
		return nil, err
	}

	b.logger.Debug("message delivered", "queue", queueName, "id", env.ID, "waited", time.Since(start))
	b.events.emit(&core.MessageDelivered{
		Queue:     queueName,
		MessageID: env.ID,
		Waited:    time.Since(start),
		Timestamp: time.Now(),
	})
	return env, nil
}

// QueueStats returns a point-in-time snapshot of every live queue.
func (b *Broker) QueueStats() []queue.Stats {
	names := b.registry.Names()
	stats := make([]queue.Stats, 0, len(names))
	for _, name := range names {
		if q, ok := b.registry.Get(name); ok {
			stats = append(stats, q.Snapshot())
		}
	}
	return stats
}

// Events returns a channel for receiving broker events.
// The caller must call Unsubscribe when done to prevent resource leaks.
func (b *Broker) Events() <-chan core.Event {
	return b.events.subscribe()
}

// Unsubscribe removes a subscriber channel created by Events().
func (b *Broker) Unsubscribe(ch <-chan core.Event) {
	b.events.unsubscribe(ch)
}

// Close shuts the broker down: every queue is closed and all blocked
// dequeue callers are woken with ErrQueueClosed. Safe to call more than
// once.
func (b *Broker) Close() {
	b.registry.Close()
	b.logger.Debug("broker closed")
}
