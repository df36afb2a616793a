package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type analyticsRepository interface {
	AlertCountsByStatus(ctx context.Context, from, to time.Time) (map[string]int, error)
	AlertCountsBySeverity(ctx context.Context, from, to time.Time) (map[string]int, error)
	AlertCountsByCamera(ctx context.Context, from, to time.Time) (map[string]int, error)
	AlertSeries(ctx context.Context, from, to time.Time) ([]models.AlertSeriesPoint, error)
	AverageResolutionSeconds(ctx context.Context, from, to time.Time) (float64, error)
	NotificationCountsByType(ctx context.Context, from, to time.Time) (map[string]int, error)
	NotificationTotals(ctx context.Context, from, to time.Time) (total, unread int, err error)
}

type analyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AnalyticsService computes aggregate views over alerts and notifications.
// Results are cached in Redis keyed by the requested window.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    analyticsCache
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAnalyticsService creates an instance of AnalyticsService. The cache and
// metrics service may be nil.
func NewAnalyticsService(repo analyticsRepository, cache analyticsCache, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Alerts returns alert analytics for the window. The second return value
// reports whether the payload came from cache.
func (s *AnalyticsService) Alerts(ctx context.Context, from, to time.Time) (*models.AlertAnalytics, bool, error) {
	key := fmt.Sprintf("analytics:alerts:%d:%d", from.Unix(), to.Unix())
	if s.cache != nil {
		var cached models.AlertAnalytics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordCache(true)
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("alert analytics cache read failed", zap.Error(err))
		}
	}
	s.recordCache(false)

	byStatus, err := s.repo.AlertCountsByStatus(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate alert statuses")
	}
	bySeverity, err := s.repo.AlertCountsBySeverity(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate alert severities")
	}
	byCamera, err := s.repo.AlertCountsByCamera(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate alert cameras")
	}
	series, err := s.repo.AlertSeries(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build alert series")
	}
	avgResolution, err := s.repo.AverageResolutionSeconds(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute resolution time")
	}

	analytics := &models.AlertAnalytics{
		From:                 from,
		To:                   to,
		Series:               series,
		ByStatus:             byStatus,
		BySeverity:           bySeverity,
		ByCamera:             byCamera,
		AvgResolutionSeconds: avgResolution,
		GeneratedAt:          time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, analytics, s.cacheTTL); err != nil {
			s.logger.Warn("alert analytics cache write failed", zap.Error(err))
		}
	}
	return analytics, false, nil
}

// Notifications returns notification analytics for the window.
func (s *AnalyticsService) Notifications(ctx context.Context, from, to time.Time) (*models.NotificationAnalytics, bool, error) {
	key := fmt.Sprintf("analytics:notifications:%d:%d", from.Unix(), to.Unix())
	if s.cache != nil {
		var cached models.NotificationAnalytics
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordCache(true)
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("notification analytics cache read failed", zap.Error(err))
		}
	}
	s.recordCache(false)

	byType, err := s.repo.NotificationCountsByType(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate notification types")
	}
	total, unread, err := s.repo.NotificationTotals(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}

	analytics := &models.NotificationAnalytics{
		From:        from,
		To:          to,
		ByType:      byType,
		Total:       total,
		UnreadTotal: unread,
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, analytics, s.cacheTTL); err != nil {
			s.logger.Warn("notification analytics cache write failed", zap.Error(err))
		}
	}
	return analytics, false, nil
}

// System returns a process level snapshot from the metrics service.
func (s *AnalyticsService) System(ctx context.Context) (*models.SystemMetrics, error) {
	snapshot := &models.SystemMetrics{
		Goroutines:  runtime.NumGoroutine(),
		GeneratedAt: time.Now().UTC(),
	}
	if s.metrics != nil {
		stats := s.metrics.Snapshot()
		snapshot.RequestsTotal = stats.RequestsTotal
		snapshot.AverageRequestDurationMs = stats.AverageRequestDurationMs
		snapshot.CacheHits = stats.CacheHits
		snapshot.CacheMisses = stats.CacheMisses
		if stats.CacheHits+stats.CacheMisses > 0 {
			snapshot.CacheHitRatio = float64(stats.CacheHits) / float64(stats.CacheHits+stats.CacheMisses)
		}
	}
	return snapshot, nil
}

func (s *AnalyticsService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCache(hit)
	}
}
