package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
)

type alertRepoMock struct {
	alerts     map[string]*models.Alert
	lastFilter models.AlertFilter
	updates    int
}

func newAlertRepoMock(alerts ...*models.Alert) *alertRepoMock {
	m := &alertRepoMock{alerts: make(map[string]*models.Alert)}
	for _, a := range alerts {
		m.alerts[a.ID] = a
	}
	return m
}

func (m *alertRepoMock) List(_ context.Context, filter models.AlertFilter) ([]models.Alert, int, error) {
	m.lastFilter = filter
	out := make([]models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *alertRepoMock) FindByID(_ context.Context, id string) (*models.Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (m *alertRepoMock) Create(_ context.Context, alert *models.Alert) error {
	alert.ID = "a-new"
	m.alerts[alert.ID] = alert
	return nil
}

func (m *alertRepoMock) UpdateStatus(_ context.Context, id string, status models.AlertStatus, resolvedAt *time.Time) error {
	m.updates++
	m.alerts[id].Status = status
	m.alerts[id].ResolvedAt = resolvedAt
	return nil
}

func (m *alertRepoMock) Assign(_ context.Context, id, userID string) error {
	m.alerts[id].AssignedTo = &userID
	return nil
}

func newAlertHandler(repo *alertRepoMock) *AlertHandler {
	return NewAlertHandler(service.NewAlertService(repo, nil, nil, nil, nil, zap.NewNop()))
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAlertListRejectsUnknownStatus(t *testing.T) {
	handler := newAlertHandler(newAlertRepoMock())

	c, w := testContext(t, http.MethodGet, "/alerts?status=pending")
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlertListPassesFilterThrough(t *testing.T) {
	repo := newAlertRepoMock(&models.Alert{ID: "a-1", Status: models.AlertStatusNew, Severity: models.SeverityHigh})
	handler := newAlertHandler(repo)

	c, w := testContext(t, http.MethodGet, "/alerts?status=new&severity=high&camera=cam-3&page=2&page_size=5")
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.AlertStatusNew, *repo.lastFilter.Status)
	require.NotNil(t, repo.lastFilter.Severity)
	assert.Equal(t, models.SeverityHigh, *repo.lastFilter.Severity)
	assert.Equal(t, "cam-3", repo.lastFilter.Camera)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 5, repo.lastFilter.PageSize)
}

func TestAlertGetUnknownReturns404(t *testing.T) {
	handler := newAlertHandler(newAlertRepoMock())

	c, w := testContext(t, http.MethodGet, "/alerts/missing")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAlertUpdateStatusLegalTransition(t *testing.T) {
	repo := newAlertRepoMock(&models.Alert{ID: "a-1", Status: models.AlertStatusNew})
	handler := newAlertHandler(repo)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/alerts/a-1/status", service.UpdateAlertStatusRequest{Status: models.AlertStatusAcknowledged})
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	asCaller(c, models.RoleOperator)

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.AlertStatusAcknowledged, repo.alerts["a-1"].Status)
}

func TestAlertUpdateStatusIllegalTransitionConflicts(t *testing.T) {
	repo := newAlertRepoMock(&models.Alert{ID: "a-1", Status: models.AlertStatusResolved})
	handler := newAlertHandler(repo)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/alerts/a-1/status", service.UpdateAlertStatusRequest{Status: models.AlertStatusNew})
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	asCaller(c, models.RoleOperator)

	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, repo.updates)
}

func TestAlertCreateValidatesSeverity(t *testing.T) {
	handler := newAlertHandler(newAlertRepoMock())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/alerts", map[string]any{
		"type":        "fight",
		"severity":    "apocalyptic",
		"camera":      "cam-1",
		"description": "scuffle near gate",
	})

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlertAssign(t *testing.T) {
	repo := newAlertRepoMock(&models.Alert{ID: "a-1", Status: models.AlertStatusNew})
	handler := newAlertHandler(repo)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/alerts/a-1/assign", map[string]string{"userId": "guard-7"})
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}

	handler.Assign(c)
	// c.Status alone does not flush outside a running engine.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, repo.alerts["a-1"].AssignedTo)
	assert.Equal(t, "guard-7", *repo.alerts["a-1"].AssignedTo)
}
