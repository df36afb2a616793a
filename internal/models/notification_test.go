package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryNotificationTypeHasAStyle(t *testing.T) {
	for _, typ := range []NotificationType{
		NotificationTypeSecurity, NotificationTypeSystem,
		NotificationTypeHardware, NotificationTypeUser,
	} {
		style := typ.Style()
		assert.NotEmpty(t, style.Icon, "type %s", typ)
		assert.NotEmpty(t, style.Color, "type %s", typ)
	}
}

func TestUnknownTypeFallsBackToSystemStyle(t *testing.T) {
	assert.Equal(t, NotificationTypeSystem.Style(), NotificationType("gossip").Style())
}

func TestNotificationTypeValid(t *testing.T) {
	assert.True(t, NotificationTypeHardware.Valid())
	assert.False(t, NotificationType("").Valid())
	assert.False(t, NotificationType("misc").Valid())
}
