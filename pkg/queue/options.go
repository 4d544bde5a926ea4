package queue

// Option modifies a Queue at construction time.
type Option interface {
	Apply(*Queue)
}

type optionFunc func(*Queue)

func (f optionFunc) Apply(q *Queue) { f(q) }

// WithMaxMessages caps the number of undelivered messages the queue will
// hold; Enqueue returns core.ErrQueueFull beyond it. Zero means unbounded.
func WithMaxMessages(n int) Option {
	return optionFunc(func(q *Queue) {
		if n < 0 {
			n = 0
		}
		q.maxMessages = n
	})
}
