package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

// AnalyticsRepository provides aggregate queries over alerts, notifications
// and users for the analytics and dashboard endpoints.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// AlertCountsByStatus returns alert counts grouped by status within a window.
func (r *AnalyticsRepository) AlertCountsByStatus(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `SELECT status AS key, COUNT(*) AS count FROM alerts WHERE occurred_at >= $1 AND occurred_at <= $2 GROUP BY status`
	return r.groupedCounts(ctx, query, from, to)
}

// AlertCountsBySeverity returns alert counts grouped by severity within a window.
func (r *AnalyticsRepository) AlertCountsBySeverity(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `SELECT severity AS key, COUNT(*) AS count FROM alerts WHERE occurred_at >= $1 AND occurred_at <= $2 GROUP BY severity`
	return r.groupedCounts(ctx, query, from, to)
}

// AlertCountsByCamera returns alert counts grouped by camera within a window.
func (r *AnalyticsRepository) AlertCountsByCamera(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `SELECT camera AS key, COUNT(*) AS count FROM alerts WHERE occurred_at >= $1 AND occurred_at <= $2 GROUP BY camera`
	return r.groupedCounts(ctx, query, from, to)
}

func (r *AnalyticsRepository) groupedCounts(ctx context.Context, query string, from, to time.Time) (map[string]int, error) {
	rows := []struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("grouped alert counts: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// AlertSeries returns daily alert counts within a window.
func (r *AnalyticsRepository) AlertSeries(ctx context.Context, from, to time.Time) ([]models.AlertSeriesPoint, error) {
	const query = `SELECT DATE(occurred_at) AS date, COUNT(*) AS count FROM alerts WHERE occurred_at >= $1 AND occurred_at <= $2 GROUP BY DATE(occurred_at) ORDER BY date ASC`
	var points []models.AlertSeriesPoint
	if err := r.db.SelectContext(ctx, &points, query, from, to); err != nil {
		return nil, fmt.Errorf("alert series: %w", err)
	}
	return points, nil
}

// AverageResolutionSeconds returns the mean time from occurrence to resolution
// for alerts resolved within a window.
func (r *AnalyticsRepository) AverageResolutionSeconds(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - occurred_at))), 0) FROM alerts WHERE resolved_at IS NOT NULL AND resolved_at >= $1 AND resolved_at <= $2`
	var avg float64
	if err := r.db.GetContext(ctx, &avg, query, from, to); err != nil {
		return 0, fmt.Errorf("average resolution time: %w", err)
	}
	return avg, nil
}

// NotificationCountsByType returns notification counts grouped by type within a window.
func (r *AnalyticsRepository) NotificationCountsByType(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `SELECT type AS key, COUNT(*) AS count FROM notifications WHERE created_at >= $1 AND created_at <= $2 GROUP BY type`
	rows := []struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("notification counts by type: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// NotificationTotals returns total and unread notification counts within a window.
func (r *AnalyticsRepository) NotificationTotals(ctx context.Context, from, to time.Time) (total, unread int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE read = FALSE) AS unread FROM notifications WHERE created_at >= $1 AND created_at <= $2`
	var row struct {
		Total  int `db:"total"`
		Unread int `db:"unread"`
	}
	if err := r.db.GetContext(ctx, &row, query, from, to); err != nil {
		return 0, 0, fmt.Errorf("notification totals: %w", err)
	}
	return row.Total, row.Unread, nil
}

// ActiveUserCount returns the number of active users.
func (r *AnalyticsRepository) ActiveUserCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("active user count: %w", err)
	}
	return count, nil
}

// OpenAlertCount returns the number of alerts not in a terminal status.
func (r *AnalyticsRepository) OpenAlertCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM alerts WHERE status NOT IN ('resolved', 'false_alarm')`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("open alert count: %w", err)
	}
	return count, nil
}

// ActiveRuleCount returns the number of active response rules.
func (r *AnalyticsRepository) ActiveRuleCount(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM response_rules WHERE status = 'active'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("active rule count: %w", err)
	}
	return count, nil
}

// RecentAlerts returns the most recent alerts for the dashboard summary.
func (r *AnalyticsRepository) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	query := fmt.Sprintf(`SELECT %s FROM alerts ORDER BY occurred_at DESC LIMIT %d`, alertColumns, limit)
	var alerts []models.Alert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	return alerts, nil
}
