// Package stats records broker activity over time: per-queue counters fed by
// the broker event stream, plus periodic depth snapshots, persisted through a
// pluggable storage backend.
package stats

import (
	"context"
	"time"
)

// BrokerStat is one per-queue, per-interval row of broker activity.
type BrokerStat struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Queue     string    `gorm:"index:idx_broker_stats_queue_ts;size:255;not null"`
	Timestamp time.Time `gorm:"index:idx_broker_stats_queue_ts;not null"`

	// Counters accumulated since the previous row.
	Enqueued  int64
	Delivered int64
	Expired   int64

	// Point-in-time gauges.
	Depth   int64
	Waiters int64
}

// Storage persists broker stats.
type Storage interface {
	// Migrate creates or updates the stats schema.
	Migrate(ctx context.Context) error

	// UpsertCounters adds counter deltas to the row for (queue, ts),
	// creating it if absent. ts is truncated to the minute.
	UpsertCounters(ctx context.Context, queue string, ts time.Time, enqueued, delivered, expired int64) error

	// SnapshotDepth records current queue depth and waiter count on the
	// row for (queue, ts), creating it if absent.
	SnapshotDepth(ctx context.Context, queue string, ts time.Time, depth, waiters int64) error

	// History returns rows for queue (all queues when empty) within
	// [since, until], oldest first. Zero bounds are open.
	History(ctx context.Context, queue string, since, until time.Time) ([]BrokerStat, error)

	// Prune deletes rows older than before, returning how many went.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
