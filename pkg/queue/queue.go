package queue

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/simple-message-broker/pkg/core"
)

// Queue is a named FIFO message queue with long-poll support.
//
// All mutable state (messages, waiters, closed) is guarded by mu. A blocked
// dequeue waits outside the lock on its own buffered channel, so enqueues on
// the same queue and all operations on other queues proceed unhindered.
//
// Invariant: the waiter list is non-empty only while the message list is
// empty. Enqueue hands a message straight to the oldest waiter when one
// exists, so a fresh message can never skip past an already-blocked dequeue.
type Queue struct {
	name string

	mu       sync.Mutex
	messages *list.List // of *core.Envelope, oldest at front
	waiters  *list.List // of *waiter, oldest at front
	closed   bool

	maxMessages int
}

// New creates an empty queue.
func New(name string, opts ...Option) *Queue {
	q := &Queue{
		name:     name,
		messages: list.New(),
		waiters:  list.New(),
	}
	for _, opt := range opts {
		opt.Apply(q)
	}
	return q
}

// Name returns the queue's immutable name.
func (q *Queue) Name() string {
	return q.name
}

// Enqueue appends a new envelope holding payload.
//
// If dequeue callers are blocked on this queue, the envelope bypasses
// storage and is handed to the waiter that has been blocked longest.
// Returns core.ErrQueueFull when the queue holds its configured maximum
// of undelivered messages, and core.ErrQueueClosed after Close.
func (q *Queue) Enqueue(payload json.RawMessage) (*core.Envelope, error) {
	env := &core.Envelope{
		ID:         uuid.New().String(),
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, core.ErrQueueClosed
	}

	if front := q.waiters.Front(); front != nil {
		w := q.waiters.Remove(front).(*waiter)
		w.done = true
		w.ch <- env
		return env, nil
	}

	if q.maxMessages > 0 && q.messages.Len() >= q.maxMessages {
		return nil, core.ErrQueueFull
	}
	q.messages.PushBack(env)
	return env, nil
}

// Dequeue removes and returns the oldest message.
//
// If a message is present it is returned immediately. On an empty queue a
// zero wait returns core.ErrNoMessage at once; a positive wait blocks until
// a concurrent Enqueue hands this caller a message, the wait elapses
// (core.ErrNoMessage), or ctx is cancelled (ctx.Err()).
//
// When expiry and arrival race, arrival wins: delivery marks the waiter
// done under the queue lock, and the expiry path re-checks that flag under
// the same lock before giving up, returning the delivered message instead.
func (q *Queue) Dequeue(ctx context.Context, wait time.Duration) (*core.Envelope, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, core.ErrQueueClosed
	}
	if front := q.messages.Front(); front != nil {
		env := q.messages.Remove(front).(*core.Envelope)
		q.mu.Unlock()
		return env, nil
	}
	if wait <= 0 {
		q.mu.Unlock()
		return nil, core.ErrNoMessage
	}

	w := newWaiter()
	w.elem = q.waiters.PushBack(w)
	q.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case env := <-w.ch:
		return env, nil
	case err := <-w.errCh:
		return nil, err
	case <-timer.C:
		return q.abandon(w, core.ErrNoMessage)
	case <-ctx.Done():
		return q.abandon(w, ctx.Err())
	}
}

// abandon removes w from the waiter list unless a concurrent Enqueue or
// Close already resolved it, in which case that outcome is returned.
func (q *Queue) abandon(w *waiter, err error) (*core.Envelope, error) {
	q.mu.Lock()
	if w.done {
		q.mu.Unlock()
		// Resolved between the select firing and the lock being taken.
		// Both channels are buffered, so the result is already there.
		select {
		case env := <-w.ch:
			return env, nil
		case resolved := <-w.errCh:
			return nil, resolved
		}
	}
	w.done = true
	q.waiters.Remove(w.elem)
	q.mu.Unlock()
	return nil, err
}

// Close wakes all blocked waiters with core.ErrQueueClosed and rejects
// subsequent operations. Stored messages are discarded. Safe to call
// more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	for e := q.waiters.Front(); e != nil; e = e.Next() {
		w := e.Value.(*waiter)
		w.done = true
		w.errCh <- core.ErrQueueClosed
	}
	q.waiters.Init()
	q.messages.Init()
}

// Len returns the number of undelivered messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.messages.Len()
}

// Waiting returns the number of currently blocked dequeue callers.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiters.Len()
}

// Stats is a point-in-time snapshot of a queue.
type Stats struct {
	Name    string
	Depth   int
	Waiters int
}

// Snapshot returns the queue's current stats.
func (q *Queue) Snapshot() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Name:    q.name,
		Depth:   q.messages.Len(),
		Waiters: q.waiters.Len(),
	}
}
