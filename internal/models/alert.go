package models

import "time"

// AlertSeverity ranks how urgent an alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Valid reports whether the severity is recognised.
func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AlertStatus is the lifecycle state of an alert. Transitions are
// server-driven; clients only request them.
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "new"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusInProgress   AlertStatus = "in_progress"
	AlertStatusResolved     AlertStatus = "resolved"
	AlertStatusFalseAlarm   AlertStatus = "false_alarm"
)

// Valid reports whether the status is recognised.
func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusNew, AlertStatusAcknowledged, AlertStatusInProgress, AlertStatusResolved, AlertStatusFalseAlarm:
		return true
	}
	return false
}

// alertTransitions lists every permitted status transition. Resolved and
// false_alarm are terminal.
var alertTransitions = map[AlertStatus][]AlertStatus{
	AlertStatusNew:          {AlertStatusAcknowledged, AlertStatusInProgress},
	AlertStatusAcknowledged: {AlertStatusInProgress, AlertStatusResolved, AlertStatusFalseAlarm},
	AlertStatusInProgress:   {AlertStatusResolved, AlertStatusFalseAlarm},
	AlertStatusResolved:     nil,
	AlertStatusFalseAlarm:   nil,
}

// CanTransition reports whether moving from s to next is permitted.
func (s AlertStatus) CanTransition(next AlertStatus) bool {
	for _, allowed := range alertTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s AlertStatus) Terminal() bool {
	return len(alertTransitions[s]) == 0
}

// ResponseAction records an action executed (or dispatched) for an alert.
type ResponseAction struct {
	ID         string         `db:"id" json:"id"`
	AlertID    string         `db:"alert_id" json:"alertId"`
	RuleID     *string        `db:"rule_id" json:"ruleId,omitempty"`
	ActionType RuleActionType `db:"action_type" json:"actionType"`
	Detail     string         `db:"detail" json:"detail"`
	ExecutedAt time.Time      `db:"executed_at" json:"executedAt"`
}

// Alert represents a security incident raised by the detection pipeline
// or by an operator.
type Alert struct {
	ID          string        `db:"id" json:"id"`
	Type        string        `db:"type" json:"type"`
	Severity    AlertSeverity `db:"severity" json:"severity"`
	Status      AlertStatus   `db:"status" json:"status"`
	Camera      string        `db:"camera" json:"camera"`
	Location    string        `db:"location" json:"location"`
	Description string        `db:"description" json:"description"`
	Confidence  *float64      `db:"confidence" json:"confidence,omitempty"`
	ClipPath    *string       `db:"clip_path" json:"clipPath,omitempty"`
	AssignedTo  *string       `db:"assigned_to" json:"assignedTo,omitempty"`
	OccurredAt  time.Time     `db:"occurred_at" json:"occurredAt"`
	ResolvedAt  *time.Time    `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`

	ResponseActions []ResponseAction `db:"-" json:"responseActions,omitempty"`
}

// AlertFilter captures listing criteria for alerts.
type AlertFilter struct {
	Severity  *AlertSeverity
	Status    *AlertStatus
	Camera    string
	From      *time.Time
	To        *time.Time
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
