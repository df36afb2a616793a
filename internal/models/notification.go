package models

import "time"

// NotificationType is the closed enumeration of notification categories.
type NotificationType string

const (
	NotificationTypeSecurity NotificationType = "security"
	NotificationTypeSystem   NotificationType = "system"
	NotificationTypeHardware NotificationType = "hardware"
	NotificationTypeUser     NotificationType = "user"
)

// Valid reports whether the type belongs to the enumeration.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeSecurity, NotificationTypeSystem, NotificationTypeHardware, NotificationTypeUser:
		return true
	}
	return false
}

// NotificationStyle carries the presentation attributes for a type.
type NotificationStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// notificationStyles is the exhaustive type to presentation mapping. Every
// member of NotificationType must have an entry; Style falls back to the
// system style for anything outside the enumeration.
var notificationStyles = map[NotificationType]NotificationStyle{
	NotificationTypeSecurity: {Icon: "shield-alert", Color: "red"},
	NotificationTypeSystem:   {Icon: "server-cog", Color: "blue"},
	NotificationTypeHardware: {Icon: "cpu", Color: "amber"},
	NotificationTypeUser:     {Icon: "user-round", Color: "green"},
}

// Style resolves the presentation attributes for the type.
func (t NotificationType) Style() NotificationStyle {
	if style, ok := notificationStyles[t]; ok {
		return style
	}
	return notificationStyles[NotificationTypeSystem]
}

// Notification represents a persisted notification row.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"read" json:"read"`
	RelatedID *string          `db:"related_id" json:"relatedId,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	ReadAt    *time.Time       `db:"read_at" json:"readAt,omitempty"`

	Display NotificationStyle `db:"-" json:"display"`
}

// NotificationFilter captures listing criteria for notifications.
type NotificationFilter struct {
	Read     *bool
	Type     *NotificationType
	Search   string
	Page     int
	PageSize int
}
