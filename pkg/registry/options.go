package registry

import "github.com/jdziat/simple-message-broker/pkg/queue"

// Option modifies a Registry at construction time.
type Option interface {
	Apply(*Registry)
}

type optionFunc func(*Registry)

func (f optionFunc) Apply(r *Registry) { f(r) }

// WithMaxQueues caps the number of distinct queues; GetOrCreate returns
// core.ErrTooManyQueues beyond it. Zero means unbounded.
func WithMaxQueues(n int) Option {
	return optionFunc(func(r *Registry) {
		if n < 0 {
			n = 0
		}
		r.maxQueues = n
	})
}

// WithQueueOptions sets the options applied to every queue the registry
// creates.
func WithQueueOptions(opts ...queue.Option) Option {
	return optionFunc(func(r *Registry) {
		r.queueOpts = opts
	})
}
