package service

import (
	"context"
	"time"

	"github.com/OscarR093/monitoreoTermico-sub000/internal/logger"
	"github.com/OscarR093/monitoreoTermico-sub000/internal/metrics"
)

// DefaultRetentionDays is how long readings are kept.
const DefaultRetentionDays = 30

const defaultRetentionTick = time.Hour

type purger interface {
	DeleteOldRecords(ctx context.Context, days int) (int64, error)
}

// RetentionService periodically deletes readings older than the retention window.
type RetentionService struct {
	history purger
	days    int
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewRetentionService returns a worker that keeps days of history.
// days == 0 disables purging.
func NewRetentionService(history purger, days int, m *metrics.Metrics, log *logger.Logger) *RetentionService {
	return &RetentionService{
		history: history,
		days:    days,
		metrics: m,
		log:     logger.OrNop(log).Named("retention"),
	}
}

// Run purges once immediately, then at every tick until ctx is canceled.
func (s *RetentionService) Run(ctx context.Context, tick time.Duration) {
	if s.days <= 0 {
		s.log.Infow("retention_disabled")
		return
	}
	if tick <= 0 {
		s.log.Warnw("retention_interval_invalid", "interval", tick, "using", defaultRetentionTick)
		tick = defaultRetentionTick
	}
	s.purge(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.purge(ctx)
		}
	}
}

func (s *RetentionService) purge(ctx context.Context) {
	n, err := s.history.DeleteOldRecords(ctx, s.days)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Errorw("retention_purge_failed", "days", s.days, "error", err)
		}
		return
	}
	s.metrics.ReadingsPurged(n)
	if n > 0 {
		s.log.Infow("retention_purged", "deleted", n, "days", s.days)
	}
}
