package models

import "time"

// Audit action identifiers recorded by the platform.
const (
	AuditActionLogin          = "auth.login"
	AuditActionLogout         = "auth.logout"
	AuditActionRegister       = "auth.register"
	AuditActionPasswordChange = "auth.password_change"
	AuditActionUserCreate     = "users.create"
	AuditActionUserUpdate     = "users.update"
	AuditActionUserDelete     = "users.delete"
	AuditActionAlertStatus    = "alerts.status_change"
	AuditActionRuleCreate     = "rules.create"
	AuditActionRuleUpdate     = "rules.update"
	AuditActionRuleDelete     = "rules.delete"
	AuditActionRuleActivate   = "rules.activate"
	AuditActionRuleDeactivate = "rules.deactivate"
	AuditActionDetection      = "detection.predict"
	AuditActionReportRequest  = "reports.request"
)

// AuditLog is one activity row; the History and UserActivity views read
// from the same table with different filters.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent  string    `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ActivityFilter captures listing criteria for activity queries.
type ActivityFilter struct {
	UserID   string
	Action   string
	Resource string
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
