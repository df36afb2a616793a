package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// NotificationHandler handles per-user notification endpoints.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Description List the caller's notifications with pagination and filtering
// @Tags Notifications
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Param read query bool false "Read filter"
// @Param type query string false "Type filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.NotificationFilter
	filter.Page, filter.PageSize = pageParams(c)
	if read := c.Query("read"); read != "" {
		if val, err := strconv.ParseBool(read); err == nil {
			filter.Read = &val
		}
	}
	if typ := c.Query("type"); typ != "" {
		t := models.NotificationType(typ)
		if !t.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown notification type"))
			return
		}
		filter.Type = &t
	}
	filter.Search = c.Query("search")

	notifications, pagination, err := h.service.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// Create godoc
// @Summary Create notification
// @Description Push a notification to a specific user
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req service.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	notification, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notification)
}

// UnreadCount godoc
// @Summary Unread count
// @Description Number of unread notifications for the caller
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// MarkRead godoc
// @Summary Mark notification read
// @Description Mark one notification as read; repeats are no-ops
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 {object} nil
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRead godoc
// @Summary Mark all read
// @Description Mark every unread notification for the caller as read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	affected, err := h.service.MarkAllRead(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": affected}, nil)
}

// Delete godoc
// @Summary Delete notification
// @Description Remove a notification; deleting a missing one succeeds
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204 {object} nil
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
