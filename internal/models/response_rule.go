package models

import (
	"encoding/json"
	"time"
)

// RuleStatus toggles whether a rule participates in evaluation. Activate
// and deactivate are explicit transition endpoints, not a generic PATCH.
type RuleStatus string

const (
	RuleStatusActive   RuleStatus = "active"
	RuleStatusInactive RuleStatus = "inactive"
)

// RuleConditionField enumerates the alert attributes a condition may test.
const (
	RuleFieldSeverity = "severity"
	RuleFieldCamera   = "camera"
	RuleFieldLocation = "location"
)

// RuleCondition is a single predicate over an incoming alert.
type RuleCondition struct {
	Field    string `json:"field" validate:"required,oneof=severity camera location"`
	Operator string `json:"operator" validate:"required,oneof=eq neq gte"`
	Value    string `json:"value" validate:"required"`
}

// RuleActionType enumerates what the platform does when a rule matches.
type RuleActionType string

const (
	RuleActionNotify   RuleActionType = "notify"
	RuleActionLock     RuleActionType = "lock"
	RuleActionRecord   RuleActionType = "record"
	RuleActionEscalate RuleActionType = "escalate"
)

// Valid reports whether the action type is recognised.
func (a RuleActionType) Valid() bool {
	switch a {
	case RuleActionNotify, RuleActionLock, RuleActionRecord, RuleActionEscalate:
		return true
	}
	return false
}

// RuleAction describes one configured response to a matching alert.
type RuleAction struct {
	Type   RuleActionType `json:"type" validate:"required,oneof=notify lock record escalate"`
	Target string         `json:"target"`
}

// ResponseRule is the persisted automation rule.
type ResponseRule struct {
	ID            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Description   string     `db:"description" json:"description"`
	Status        RuleStatus `db:"status" json:"status"`
	RawConditions []byte     `db:"conditions" json:"-"`
	RawActions    []byte     `db:"actions" json:"-"`
	TriggerCount  int        `db:"trigger_count" json:"triggerCount"`
	LastTriggered *time.Time `db:"last_triggered" json:"lastTriggered,omitempty"`
	CreatedBy     string     `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`

	Conditions []RuleCondition `db:"-" json:"conditions"`
	Actions    []RuleAction    `db:"-" json:"actions"`
}

// DecodePayloads unpacks the JSON condition/action columns.
func (r *ResponseRule) DecodePayloads() error {
	if len(r.RawConditions) > 0 {
		if err := json.Unmarshal(r.RawConditions, &r.Conditions); err != nil {
			return err
		}
	}
	if len(r.RawActions) > 0 {
		if err := json.Unmarshal(r.RawActions, &r.Actions); err != nil {
			return err
		}
	}
	return nil
}

// EncodePayloads packs the condition/action slices into their JSON columns.
func (r *ResponseRule) EncodePayloads() error {
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return err
	}
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return err
	}
	r.RawConditions = conditions
	r.RawActions = actions
	return nil
}

// severityRank orders severities for gte comparisons in rule conditions.
var severityRank = map[AlertSeverity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Matches evaluates every condition against the alert; all must hold.
func (r *ResponseRule) Matches(alert *Alert) bool {
	if r.Status != RuleStatusActive {
		return false
	}
	for _, cond := range r.Conditions {
		if !cond.matches(alert) {
			return false
		}
	}
	return true
}

func (c RuleCondition) matches(alert *Alert) bool {
	var actual string
	switch c.Field {
	case RuleFieldSeverity:
		if c.Operator == "gte" {
			return severityRank[alert.Severity] >= severityRank[AlertSeverity(c.Value)]
		}
		actual = string(alert.Severity)
	case RuleFieldCamera:
		actual = alert.Camera
	case RuleFieldLocation:
		actual = alert.Location
	default:
		return false
	}

	switch c.Operator {
	case "eq":
		return actual == c.Value
	case "neq":
		return actual != c.Value
	}
	return false
}

// RuleFilter captures listing criteria for response rules.
type RuleFilter struct {
	Status   *RuleStatus
	Search   string
	Page     int
	PageSize int
}
