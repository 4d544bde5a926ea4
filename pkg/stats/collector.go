package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jdziat/simple-message-broker/pkg/core"
	"github.com/jdziat/simple-message-broker/pkg/queue"
	"github.com/jdziat/simple-message-broker/pkg/schedule"
)

// Broker is the surface the collector needs from the broker: its event
// stream and a way to snapshot queue depths.
type Broker interface {
	Events() <-chan core.Event
	Unsubscribe(<-chan core.Event)
	QueueStats() []queue.Stats
}

// Collector subscribes to broker events and periodically flushes counters
// and depth snapshots to storage.
type Collector struct {
	broker    Broker
	storage   Storage
	cadence   schedule.Schedule
	retention time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	counters map[string]*statCounters

	// ready is closed once the collector has subscribed to events.
	ready     chan struct{}
	readyOnce sync.Once
}

type statCounters struct {
	enqueued  int64
	delivered int64
	expired   int64
}

// CollectorOption configures the Collector.
type CollectorOption interface {
	apply(*Collector)
}

type collectorOptionFunc func(*Collector)

func (f collectorOptionFunc) apply(c *Collector) { f(c) }

// WithCadence sets the schedule on which counters are flushed and depths
// snapshotted. Defaults to every minute.
func WithCadence(s schedule.Schedule) CollectorOption {
	return collectorOptionFunc(func(c *Collector) {
		c.cadence = s
	})
}

// WithRetention sets how long stats rows are kept. Defaults to 7 days.
func WithRetention(d time.Duration) CollectorOption {
	return collectorOptionFunc(func(c *Collector) {
		c.retention = d
	})
}

// WithCollectorLogger sets the collector's logger.
func WithCollectorLogger(l *slog.Logger) CollectorOption {
	return collectorOptionFunc(func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	})
}

// NewCollector creates a Collector.
func NewCollector(b Broker, storage Storage, opts ...CollectorOption) *Collector {
	c := &Collector{
		broker:    b,
		storage:   storage,
		cadence:   schedule.Every(time.Minute),
		retention: 7 * 24 * time.Hour,
		logger:    slog.Default(),
		counters:  make(map[string]*statCounters),
		ready:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// WaitReady blocks until the collector has subscribed to events.
func (c *Collector) WaitReady() {
	<-c.ready
}

// Start begins the event listener and scheduled flushing.
// Blocks until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	events := c.broker.Events()
	defer c.broker.Unsubscribe(events)

	c.readyOnce.Do(func() { close(c.ready) })

	timer := time.NewTimer(time.Until(c.cadence.Next(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.Flush(flushCtx)
			cancel()
			return
		case e := <-events:
			c.handleEvent(e)
		case <-timer.C:
			c.Flush(ctx)
			c.snapshot(ctx)
			c.prune(ctx)
			timer.Reset(time.Until(c.cadence.Next(time.Now())))
		}
	}
}

func (c *Collector) handleEvent(e core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev := e.(type) {
	case *core.MessageEnqueued:
		c.getCounters(ev.Queue).enqueued++
	case *core.MessageDelivered:
		c.getCounters(ev.Queue).delivered++
	case *core.WaitExpired:
		c.getCounters(ev.Queue).expired++
	}
}

func (c *Collector) getCounters(queueName string) *statCounters {
	counters, ok := c.counters[queueName]
	if !ok {
		counters = &statCounters{}
		c.counters[queueName] = counters
	}
	return counters
}

// Flush writes accumulated counters to storage and resets them.
func (c *Collector) Flush(ctx context.Context) {
	c.mu.Lock()
	pending := c.counters
	c.counters = make(map[string]*statCounters)
	c.mu.Unlock()

	now := time.Now()
	for queueName, counters := range pending {
		err := c.storage.UpsertCounters(ctx, queueName, now,
			counters.enqueued, counters.delivered, counters.expired)
		if err != nil {
			c.logger.Error("failed to flush stats counters", "queue", queueName, "error", err)
		}
	}
}

func (c *Collector) snapshot(ctx context.Context) {
	now := time.Now()
	for _, s := range c.broker.QueueStats() {
		err := c.storage.SnapshotDepth(ctx, s.Name, now, int64(s.Depth), int64(s.Waiters))
		if err != nil {
			c.logger.Error("failed to snapshot queue depth", "queue", s.Name, "error", err)
		}
	}
}

func (c *Collector) prune(ctx context.Context) {
	if c.retention <= 0 {
		return
	}
	if _, err := c.storage.Prune(ctx, time.Now().Add(-c.retention)); err != nil {
		c.logger.Error("failed to prune stats", "error", err)
	}
}
