package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

var alertCols = []string{"id", "type", "severity", "status", "camera", "location", "description", "confidence", "clip_path", "assigned_to", "occurred_at", "resolved_at", "created_at", "updated_at"}

func TestListAlertsFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	now := time.Now()
	status := models.AlertStatusNew
	rows := sqlmock.NewRows(alertCols).
		AddRow("a1", "fight", string(models.SeverityHigh), string(status), "cam-03", "Lobby", "Fight detected", 0.92, nil, nil, now, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM alerts WHERE 1=1 AND status = $1 ORDER BY occurred_at DESC LIMIT 10 OFFSET 0")).
		WithArgs(status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM alerts WHERE 1=1 AND status = $1")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	alerts, total, err := repo.List(context.Background(), models.AlertFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.SeverityHigh, alerts[0].Severity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAlertLoadsResponseActions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	now := time.Now()
	alertRows := sqlmock.NewRows(alertCols).
		AddRow("a1", "fight", string(models.SeverityCritical), string(models.AlertStatusAcknowledged), "cam-01", "Gate", "Fight detected", 0.97, nil, nil, now, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM alerts WHERE id = $1 LIMIT 1")).
		WithArgs("a1").
		WillReturnRows(alertRows)

	actionRows := sqlmock.NewRows([]string{"id", "alert_id", "rule_id", "action_type", "detail", "executed_at"}).
		AddRow("ra1", "a1", "r1", string(models.RuleActionNotify), "notified supervisors", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM response_actions WHERE alert_id = $1 ORDER BY executed_at ASC")).
		WithArgs("a1").
		WillReturnRows(actionRows)

	alert, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, alert.ResponseActions, 1)
	assert.Equal(t, models.RuleActionNotify, alert.ResponseActions[0].ActionType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAlertStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAlertRepository(db)

	resolvedAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE alerts SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("a1", models.AlertStatusResolved, &resolvedAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "a1", models.AlertStatusResolved, &resolvedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
