package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertTransitionTable(t *testing.T) {
	cases := []struct {
		from    AlertStatus
		to      AlertStatus
		allowed bool
	}{
		{AlertStatusNew, AlertStatusAcknowledged, true},
		{AlertStatusNew, AlertStatusInProgress, true},
		{AlertStatusNew, AlertStatusResolved, false},
		{AlertStatusNew, AlertStatusFalseAlarm, false},
		{AlertStatusAcknowledged, AlertStatusInProgress, true},
		{AlertStatusAcknowledged, AlertStatusResolved, true},
		{AlertStatusAcknowledged, AlertStatusFalseAlarm, true},
		{AlertStatusAcknowledged, AlertStatusNew, false},
		{AlertStatusInProgress, AlertStatusResolved, true},
		{AlertStatusInProgress, AlertStatusFalseAlarm, true},
		{AlertStatusInProgress, AlertStatusAcknowledged, false},
		{AlertStatusResolved, AlertStatusNew, false},
		{AlertStatusResolved, AlertStatusInProgress, false},
		{AlertStatusFalseAlarm, AlertStatusNew, false},
		{AlertStatusFalseAlarm, AlertStatusResolved, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAlertTerminalStates(t *testing.T) {
	assert.True(t, AlertStatusResolved.Terminal())
	assert.True(t, AlertStatusFalseAlarm.Terminal())
	assert.False(t, AlertStatusNew.Terminal())
	assert.False(t, AlertStatusAcknowledged.Terminal())
	assert.False(t, AlertStatusInProgress.Terminal())
}

func TestAlertStatusValid(t *testing.T) {
	assert.True(t, AlertStatusInProgress.Valid())
	assert.False(t, AlertStatus("archived").Valid())
}

func TestSeverityValid(t *testing.T) {
	assert.True(t, SeverityCritical.Valid())
	assert.False(t, AlertSeverity("urgent").Valid())
}
