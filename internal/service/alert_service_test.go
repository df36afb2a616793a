package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
)

type mockAlertRepo struct {
	alerts        map[string]*models.Alert
	created       []*models.Alert
	statusUpdates int
	lastStatus    models.AlertStatus
	lastResolved  *time.Time
	assigned      map[string]string
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: map[string]*models.Alert{}, assigned: map[string]string{}}
}

func (m *mockAlertRepo) List(_ context.Context, _ models.AlertFilter) ([]models.Alert, int, error) {
	out := make([]models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAlertRepo) FindByID(_ context.Context, id string) (*models.Alert, error) {
	alert, ok := m.alerts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *alert
	return &copied, nil
}

func (m *mockAlertRepo) Create(_ context.Context, alert *models.Alert) error {
	alert.ID = "alert-1"
	m.created = append(m.created, alert)
	m.alerts[alert.ID] = alert
	return nil
}

func (m *mockAlertRepo) UpdateStatus(_ context.Context, id string, status models.AlertStatus, resolvedAt *time.Time) error {
	m.statusUpdates++
	m.lastStatus = status
	m.lastResolved = resolvedAt
	m.alerts[id].Status = status
	m.alerts[id].ResolvedAt = resolvedAt
	return nil
}

func (m *mockAlertRepo) Assign(_ context.Context, id, userID string) error {
	m.assigned[id] = userID
	return nil
}

type recordingAuditor struct {
	logs []*models.AuditLog
}

func (r *recordingAuditor) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

type recordingIngestor struct {
	alerts []*models.Alert
}

func (r *recordingIngestor) Ingest(alert *models.Alert) {
	r.alerts = append(r.alerts, alert)
}

func seedAlert(repo *mockAlertRepo, status models.AlertStatus) *models.Alert {
	alert := &models.Alert{
		ID:       "alert-1",
		Type:     "fight",
		Severity: models.SeverityHigh,
		Status:   status,
		Camera:   "cam-04",
	}
	repo.alerts[alert.ID] = alert
	return alert
}

func TestAlertCreateFeedsRuleEngine(t *testing.T) {
	repo := newMockAlertRepo()
	ingestor := &recordingIngestor{}
	svc := NewAlertService(repo, &recordingAuditor{}, ingestor, nil, nil, zap.NewNop())

	alert, err := svc.Create(context.Background(), CreateAlertRequest{
		Type:        "fight",
		Severity:    models.SeverityCritical,
		Camera:      "cam-01",
		Description: "violent movement detected",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusNew, alert.Status)
	require.Len(t, ingestor.alerts, 1)
	assert.Same(t, alert, ingestor.alerts[0])
}

func TestAlertCreateRejectsBadSeverity(t *testing.T) {
	svc := NewAlertService(newMockAlertRepo(), nil, nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateAlertRequest{
		Type:        "fight",
		Severity:    "catastrophic",
		Camera:      "cam-01",
		Description: "x",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAlertStatusLegalTransition(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusNew)
	auditor := &recordingAuditor{}
	svc := NewAlertService(repo, auditor, nil, nil, nil, zap.NewNop())

	alert, err := svc.UpdateStatus(context.Background(), "alert-1", UpdateAlertStatusRequest{Status: models.AlertStatusAcknowledged}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusAcknowledged, alert.Status)
	assert.Nil(t, alert.ResolvedAt)
	assert.Equal(t, 1, repo.statusUpdates)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, models.AuditActionAlertStatus, auditor.logs[0].Action)
}

func TestAlertStatusIllegalTransition(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusNew)
	svc := NewAlertService(repo, nil, nil, nil, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "alert-1", UpdateAlertStatusRequest{Status: models.AlertStatusFalseAlarm}, "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Equal(t, 0, repo.statusUpdates, "illegal transition must not touch storage")
}

func TestAlertStatusSameStatusIsNoOp(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusInProgress)
	svc := NewAlertService(repo, nil, nil, nil, nil, zap.NewNop())

	alert, err := svc.UpdateStatus(context.Background(), "alert-1", UpdateAlertStatusRequest{Status: models.AlertStatusInProgress}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusInProgress, alert.Status)
	assert.Equal(t, 0, repo.statusUpdates)
}

func TestAlertStatusTerminalSetsResolvedAt(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusInProgress)
	svc := NewAlertService(repo, nil, nil, nil, nil, zap.NewNop())

	alert, err := svc.UpdateStatus(context.Background(), "alert-1", UpdateAlertStatusRequest{Status: models.AlertStatusResolved}, "user-1")
	require.NoError(t, err)

	require.NotNil(t, alert.ResolvedAt)
	require.NotNil(t, repo.lastResolved)
}

func TestAlertStatusTerminalIsFinal(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusResolved)
	svc := NewAlertService(repo, nil, nil, nil, nil, zap.NewNop())

	for _, next := range []models.AlertStatus{
		models.AlertStatusNew, models.AlertStatusAcknowledged,
		models.AlertStatusInProgress, models.AlertStatusFalseAlarm,
	} {
		_, err := svc.UpdateStatus(context.Background(), "alert-1", UpdateAlertStatusRequest{Status: next}, "user-1")
		require.Error(t, err, "resolved -> %s must be rejected", next)
	}
}

func TestAlertStatusUnknownAlert(t *testing.T) {
	svc := NewAlertService(newMockAlertRepo(), nil, nil, nil, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "missing", UpdateAlertStatusRequest{Status: models.AlertStatusAcknowledged}, "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAlertAssign(t *testing.T) {
	repo := newMockAlertRepo()
	seedAlert(repo, models.AlertStatusNew)
	svc := NewAlertService(repo, nil, nil, nil, nil, zap.NewNop())

	require.NoError(t, svc.Assign(context.Background(), "alert-1", "user-7"))
	assert.Equal(t, "user-7", repo.assigned["alert-1"])
}
