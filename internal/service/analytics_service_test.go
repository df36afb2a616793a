package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type mockAnalyticsRepo struct {
	byStatus      map[string]int
	bySeverity    map[string]int
	byCamera      map[string]int
	series        []models.AlertSeriesPoint
	avgResolution float64
	notifByType   map[string]int
	notifTotal    int
	notifUnread   int

	statusCalls int
}

func (m *mockAnalyticsRepo) AlertCountsByStatus(_ context.Context, _, _ time.Time) (map[string]int, error) {
	m.statusCalls++
	return m.byStatus, nil
}

func (m *mockAnalyticsRepo) AlertCountsBySeverity(_ context.Context, _, _ time.Time) (map[string]int, error) {
	return m.bySeverity, nil
}

func (m *mockAnalyticsRepo) AlertCountsByCamera(_ context.Context, _, _ time.Time) (map[string]int, error) {
	return m.byCamera, nil
}

func (m *mockAnalyticsRepo) AlertSeries(_ context.Context, _, _ time.Time) ([]models.AlertSeriesPoint, error) {
	return m.series, nil
}

func (m *mockAnalyticsRepo) AverageResolutionSeconds(_ context.Context, _, _ time.Time) (float64, error) {
	return m.avgResolution, nil
}

func (m *mockAnalyticsRepo) NotificationCountsByType(_ context.Context, _, _ time.Time) (map[string]int, error) {
	return m.notifByType, nil
}

func (m *mockAnalyticsRepo) NotificationTotals(_ context.Context, _, _ time.Time) (int, int, error) {
	return m.notifTotal, m.notifUnread, nil
}

type stubCache struct {
	store map[string][]byte
}

func (s *stubCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = map[string][]byte{}
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func TestAlertAnalyticsCachesByWindow(t *testing.T) {
	repo := &mockAnalyticsRepo{
		byStatus:      map[string]int{"new": 3, "resolved": 7},
		bySeverity:    map[string]int{"critical": 2},
		byCamera:      map[string]int{"cam-01": 5},
		series:        []models.AlertSeriesPoint{{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Count: 4}},
		avgResolution: 118.5,
	}
	cache := &stubCache{store: map[string][]byte{}}
	svc := NewAnalyticsService(repo, cache, nil, zap.NewNop(), time.Minute)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	first, hit, err := svc.Alerts(context.Background(), from, to)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, first.ByStatus["new"])
	assert.InDelta(t, 118.5, first.AvgResolutionSeconds, 0.001)

	second, hit, err := svc.Alerts(context.Background(), from, to)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.ByStatus, second.ByStatus)
	assert.Equal(t, 1, repo.statusCalls, "warm cache must not hit the repository")

	// A different window is a different cache entry.
	_, hit, err = svc.Alerts(context.Background(), from.AddDate(0, 0, -7), to)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.statusCalls)
}

func TestNotificationAnalytics(t *testing.T) {
	repo := &mockAnalyticsRepo{
		notifByType: map[string]int{"security": 9, "system": 2},
		notifTotal:  11,
		notifUnread: 4,
	}
	svc := NewAnalyticsService(repo, nil, nil, zap.NewNop(), time.Minute)

	analytics, hit, err := svc.Notifications(context.Background(), time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 11, analytics.Total)
	assert.Equal(t, 4, analytics.UnreadTotal)
	assert.Equal(t, 9, analytics.ByType["security"])
}

func TestSystemMetricsSnapshot(t *testing.T) {
	svc := NewAnalyticsService(&mockAnalyticsRepo{}, nil, NewMetricsService(), zap.NewNop(), time.Minute)

	snapshot, err := svc.System(context.Background())
	require.NoError(t, err)
	assert.Greater(t, snapshot.Goroutines, 0)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}

type mockDashboardRepo struct {
	openAlerts  int
	bySeverity  map[string]int
	activeRules int
	activeUsers int
	notifTotal  int
	notifUnread int
	recent      []models.Alert
	openCalls   int
}

func (m *mockDashboardRepo) OpenAlertCount(_ context.Context) (int, error) {
	m.openCalls++
	return m.openAlerts, nil
}

func (m *mockDashboardRepo) AlertCountsBySeverity(_ context.Context, _, _ time.Time) (map[string]int, error) {
	return m.bySeverity, nil
}

func (m *mockDashboardRepo) ActiveRuleCount(_ context.Context) (int, error) {
	return m.activeRules, nil
}

func (m *mockDashboardRepo) ActiveUserCount(_ context.Context) (int, error) {
	return m.activeUsers, nil
}

func (m *mockDashboardRepo) NotificationTotals(_ context.Context, _, _ time.Time) (int, int, error) {
	return m.notifTotal, m.notifUnread, nil
}

func (m *mockDashboardRepo) RecentAlerts(_ context.Context, limit int) ([]models.Alert, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

func TestDashboardSummaryCaches(t *testing.T) {
	repo := &mockDashboardRepo{
		openAlerts:  6,
		bySeverity:  map[string]int{"high": 4, "critical": 2},
		activeRules: 3,
		activeUsers: 12,
		notifTotal:  20,
		notifUnread: 8,
		recent:      []models.Alert{{ID: "alert-1"}},
	}
	cache := &stubCache{store: map[string][]byte{}}
	svc := NewDashboardService(repo, cache, nil, zap.NewNop(), time.Minute)

	summary, hit, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 6, summary.OpenAlerts)
	assert.Equal(t, 3, summary.ActiveRules)
	assert.Equal(t, 8, summary.UnreadNotifications)
	require.Len(t, summary.RecentAlerts, 1)

	_, hit, err = svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.openCalls)
}
