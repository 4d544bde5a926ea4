package broker

import (
	"log/slog"
	"time"

	"github.com/jdziat/simple-message-broker/pkg/security"
)

// config holds construction-time broker configuration.
type config struct {
	maxQueues           int
	maxMessagesPerQueue int
	maxWait             time.Duration
	logger              *slog.Logger
}

func newConfig() *config {
	return &config{
		maxWait: security.MaxWait,
		logger:  slog.Default(),
	}
}

// Option modifies broker configuration.
type Option interface {
	Apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) Apply(c *config) { f(c) }

// WithMaxQueues caps the number of distinct queues. Zero means unbounded.
func WithMaxQueues(n int) Option {
	return optionFunc(func(c *config) {
		c.maxQueues = n
	})
}

// WithMaxMessagesPerQueue caps undelivered messages per queue.
// Zero means unbounded.
func WithMaxMessagesPerQueue(n int) Option {
	return optionFunc(func(c *config) {
		c.maxMessagesPerQueue = n
	})
}

// WithMaxWait sets the longest a dequeue may block; longer requests are
// clamped. Values are clamped to [0, security.MaxWait].
func WithMaxWait(d time.Duration) Option {
	return optionFunc(func(c *config) {
		c.maxWait = security.ClampWait(d)
	})
}

// WithLogger sets the broker's logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}
