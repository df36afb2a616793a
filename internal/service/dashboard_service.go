package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

const dashboardSummaryKey = "dashboard:summary"

type dashboardRepository interface {
	OpenAlertCount(ctx context.Context) (int, error)
	AlertCountsBySeverity(ctx context.Context, from, to time.Time) (map[string]int, error)
	ActiveRuleCount(ctx context.Context) (int, error)
	ActiveUserCount(ctx context.Context) (int, error)
	NotificationTotals(ctx context.Context, from, to time.Time) (total, unread int, err error)
	RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error)
}

// DashboardService assembles the landing dashboard snapshot.
type DashboardService struct {
	repo     dashboardRepository
	cache    analyticsCache
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService creates an instance of DashboardService.
func NewDashboardService(repo dashboardRepository, cache analyticsCache, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Summary returns the dashboard snapshot. The second return value reports
// whether it was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	if s.cache != nil {
		var cached models.DashboardSummary
		if err := s.cache.Get(ctx, dashboardSummaryKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.ObserveCache(true)
			}
			return &cached, true, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveCache(false)
	}

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)

	openAlerts, err := s.repo.OpenAlertCount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open alerts")
	}
	bySeverity, err := s.repo.AlertCountsBySeverity(ctx, weekAgo, now)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate alert severities")
	}
	activeRules, err := s.repo.ActiveRuleCount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active rules")
	}
	activeUsers, err := s.repo.ActiveUserCount(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active users")
	}
	// Unread counts all pending notifications, not just this week's.
	_, unread, err := s.repo.NotificationTotals(ctx, time.Unix(0, 0).UTC(), now)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread notifications")
	}
	recent, err := s.repo.RecentAlerts(ctx, 5)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent alerts")
	}

	summary := &models.DashboardSummary{
		OpenAlerts:          openAlerts,
		AlertsBySeverity:    bySeverity,
		ActiveRules:         activeRules,
		ActiveUsers:         activeUsers,
		UnreadNotifications: unread,
		RecentAlerts:        recent,
		GeneratedAt:         now,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardSummaryKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}
