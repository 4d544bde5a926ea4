// Package registry maps queue names to queue instances, creating them
// lazily on first reference.
package registry

import (
	"sync"

	"github.com/jdziat/simple-message-broker/pkg/core"
	"github.com/jdziat/simple-message-broker/pkg/queue"
)

// Registry owns the set of live queues. Lookups dominate over creation,
// so the name map is guarded by an RWMutex; each queue synchronizes its
// own operations, and the registry lock is never held across them.
type Registry struct {
	mu     sync.RWMutex
	queues map[string]*queue.Queue
	closed bool

	maxQueues int
	queueOpts []queue.Option
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		queues: make(map[string]*queue.Queue),
	}
	for _, opt := range opts {
		opt.Apply(r)
	}
	return r
}

// GetOrCreate returns the queue for name, creating and registering an empty
// one if none exists. Concurrent first access for the same new name yields a
// single shared instance: creation re-checks the map under the write lock.
// Returns core.ErrTooManyQueues when a new queue would exceed the configured
// limit, and core.ErrBrokerClosed after Close.
func (r *Registry) GetOrCreate(name string) (*queue.Queue, error) {
	r.mu.RLock()
	q, closed := r.queues[name], r.closed
	r.mu.RUnlock()

	if closed {
		return nil, core.ErrBrokerClosed
	}
	if q != nil {
		return q, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, core.ErrBrokerClosed
	}
	// Another caller may have created it between the two locks.
	if q := r.queues[name]; q != nil {
		return q, nil
	}
	if r.maxQueues > 0 && len(r.queues) >= r.maxQueues {
		return nil, core.ErrTooManyQueues
	}

	q = queue.New(name, r.queueOpts...)
	r.queues[name] = q
	return q, nil
}

// Get returns the queue for name without creating it.
func (r *Registry) Get(name string) (*queue.Queue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queues[name]
	return q, ok
}

// Len returns the number of registered queues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.queues)
}

// Names returns the registered queue names, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.queues))
	for name := range r.queues {
		names = append(names, name)
	}
	return names
}

// Close closes every registered queue, waking their blocked waiters, and
// rejects further GetOrCreate calls. Safe to call more than once.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, q := range r.queues {
		q.Close()
	}
}
