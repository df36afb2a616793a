package models

import "time"

// AlertSeriesPoint is one daily bucket of alert counts.
type AlertSeriesPoint struct {
	Date  time.Time `db:"date" json:"date"`
	Count int       `db:"count" json:"count"`
}

// AlertAnalytics aggregates alert activity over a date range.
type AlertAnalytics struct {
	From                 time.Time          `json:"from"`
	To                   time.Time          `json:"to"`
	Series               []AlertSeriesPoint `json:"series"`
	ByStatus             map[string]int     `json:"byStatus"`
	BySeverity           map[string]int     `json:"bySeverity"`
	ByCamera             map[string]int     `json:"byCamera"`
	AvgResolutionSeconds float64            `json:"avgResolutionSeconds"`
	GeneratedAt          time.Time          `json:"generatedAt"`
}

// NotificationAnalytics aggregates notification volume by type.
type NotificationAnalytics struct {
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	ByType      map[string]int `json:"byType"`
	Total       int            `json:"total"`
	UnreadTotal int            `json:"unreadTotal"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// SystemMetrics is a lightweight process snapshot for the analytics view.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// DashboardSummary is the admin dashboard snapshot, cached with a TTL.
type DashboardSummary struct {
	OpenAlerts          int            `json:"openAlerts"`
	AlertsBySeverity    map[string]int `json:"alertsBySeverity"`
	ActiveRules         int            `json:"activeRules"`
	ActiveUsers         int            `json:"activeUsers"`
	UnreadNotifications int            `json:"unreadNotifications"`
	RecentAlerts        []Alert        `json:"recentAlerts"`
	GeneratedAt         time.Time      `json:"generatedAt"`
}
