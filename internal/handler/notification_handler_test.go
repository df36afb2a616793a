package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/middleware"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
)

type notificationRepoMock struct {
	items      []models.Notification
	unread     int
	lastUserID string
	lastFilter models.NotificationFilter
}

func (m *notificationRepoMock) List(_ context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, int, error) {
	m.lastUserID = userID
	m.lastFilter = filter
	return m.items, len(m.items), nil
}

func (m *notificationRepoMock) UnreadCount(_ context.Context, userID string) (int, error) {
	m.lastUserID = userID
	return m.unread, nil
}

func (m *notificationRepoMock) Create(_ context.Context, n *models.Notification) error {
	n.ID = "n-1"
	m.items = append(m.items, *n)
	return nil
}

func (m *notificationRepoMock) MarkRead(_ context.Context, userID, _ string, _ time.Time) (int64, error) {
	m.lastUserID = userID
	return 0, nil
}

func (m *notificationRepoMock) MarkAllRead(_ context.Context, userID string, _ time.Time) (int64, error) {
	m.lastUserID = userID
	return 3, nil
}

func (m *notificationRepoMock) Delete(_ context.Context, userID, _ string) (int64, error) {
	m.lastUserID = userID
	return 0, nil
}

func testContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func asCaller(c *gin.Context, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role})
}

func newNotificationHandler(repo *notificationRepoMock) *NotificationHandler {
	return NewNotificationHandler(service.NewNotificationService(repo, nil, zap.NewNop()))
}

func TestNotificationListScopedToCaller(t *testing.T) {
	repo := &notificationRepoMock{items: []models.Notification{{ID: "n-1", Type: models.NotificationTypeSecurity}}}
	handler := newNotificationHandler(repo)

	c, w := testContext(t, http.MethodGet, "/notifications?page=2&page_size=20&read=false")
	asCaller(c, models.RoleUser)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "user-1", repo.lastUserID)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
	require.NotNil(t, repo.lastFilter.Read)
	assert.False(t, *repo.lastFilter.Read)
}

func TestNotificationListRejectsUnknownType(t *testing.T) {
	handler := newNotificationHandler(&notificationRepoMock{})

	c, w := testContext(t, http.MethodGet, "/notifications?type=gossip")
	asCaller(c, models.RoleUser)

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationListUnauthenticated(t *testing.T) {
	handler := newNotificationHandler(&notificationRepoMock{})

	c, w := testContext(t, http.MethodGet, "/notifications")
	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnreadCountPayload(t *testing.T) {
	repo := &notificationRepoMock{unread: 7}
	handler := newNotificationHandler(repo)

	c, w := testContext(t, http.MethodGet, "/notifications/unread-count")
	asCaller(c, models.RoleUser)

	handler.UnreadCount(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 7, envelope.Data.Count)
}

func TestMarkReadZeroRowsStillNoContent(t *testing.T) {
	handler := newNotificationHandler(&notificationRepoMock{})

	c, w := testContext(t, http.MethodPatch, "/notifications/gone/read")
	asCaller(c, models.RoleUser)
	c.Params = gin.Params{{Key: "id", Value: "gone"}}

	handler.MarkRead(c)
	// c.Status alone does not flush outside a running engine.
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteMissingStillNoContent(t *testing.T) {
	handler := newNotificationHandler(&notificationRepoMock{})

	c, w := testContext(t, http.MethodDelete, "/notifications/gone")
	asCaller(c, models.RoleUser)
	c.Params = gin.Params{{Key: "id", Value: "gone"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMarkAllReadReportsUpdated(t *testing.T) {
	handler := newNotificationHandler(&notificationRepoMock{})

	c, w := testContext(t, http.MethodPost, "/notifications/read-all")
	asCaller(c, models.RoleUser)

	handler.MarkAllRead(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Updated int `json:"updated"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Updated)
}
