package stats

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// gormStorage implements Storage using GORM.
type gormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a GORM-backed stats storage.
func NewGormStorage(db *gorm.DB) Storage {
	return &gormStorage{db: db}
}

func (s *gormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&BrokerStat{})
}

func (s *gormStorage) UpsertCounters(ctx context.Context, queue string, ts time.Time, enqueued, delivered, expired int64) error {
	ts = ts.Truncate(time.Minute)

	var existing BrokerStat
	result := s.db.WithContext(ctx).
		Where("queue = ? AND timestamp = ?", queue, ts).
		First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(&BrokerStat{
			Queue:     queue,
			Timestamp: ts,
			Enqueued:  enqueued,
			Delivered: delivered,
			Expired:   expired,
		}).Error
	}
	if result.Error != nil {
		return result.Error
	}

	return s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"enqueued":  gorm.Expr("enqueued + ?", enqueued),
		"delivered": gorm.Expr("delivered + ?", delivered),
		"expired":   gorm.Expr("expired + ?", expired),
	}).Error
}

func (s *gormStorage) SnapshotDepth(ctx context.Context, queue string, ts time.Time, depth, waiters int64) error {
	ts = ts.Truncate(time.Minute)

	var existing BrokerStat
	result := s.db.WithContext(ctx).
		Where("queue = ? AND timestamp = ?", queue, ts).
		First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(&BrokerStat{
			Queue:     queue,
			Timestamp: ts,
			Depth:     depth,
			Waiters:   waiters,
		}).Error
	}
	if result.Error != nil {
		return result.Error
	}

	return s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"depth":   depth,
		"waiters": waiters,
	}).Error
}

func (s *gormStorage) History(ctx context.Context, queue string, since, until time.Time) ([]BrokerStat, error) {
	var rows []BrokerStat
	q := s.db.WithContext(ctx).Order("timestamp ASC")

	if queue != "" {
		q = q.Where("queue = ?", queue)
	}
	if !since.IsZero() {
		q = q.Where("timestamp >= ?", since)
	}
	if !until.IsZero() {
		q = q.Where("timestamp <= ?", until)
	}

	return rows, q.Find(&rows).Error
}

func (s *gormStorage) Prune(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&BrokerStat{})
	return result.RowsAffected, result.Error
}
