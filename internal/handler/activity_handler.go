package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// ActivityHandler serves the history and user-activity views.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activity
// @Description List audit log entries with pagination and filtering
// @Tags Activity
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Param user_id query string false "Actor filter"
// @Param action query string false "Action filter"
// @Param resource query string false "Resource filter"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var filter models.ActivityFilter
	filter.Page, filter.PageSize = pageParams(c)
	filter.UserID = c.Query("user_id")
	filter.Action = c.Query("action")
	filter.Resource = c.Query("resource")
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	filter.Search = c.Query("search")

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// History godoc
// @Summary Alert history
// @Description List audit log entries for alert lifecycle changes
// @Tags Activity
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /activity/history [get]
func (h *ActivityHandler) History(c *gin.Context) {
	var filter models.ActivityFilter
	filter.Page, filter.PageSize = pageParams(c)
	filter.Resource = "alerts"
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}
	filter.Search = c.Query("search")

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}

// MyActivity godoc
// @Summary Own activity
// @Description List the caller's own audit log entries
// @Tags Activity
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /activity/me [get]
func (h *ActivityHandler) MyActivity(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.ActivityFilter
	filter.Page, filter.PageSize = pageParams(c)
	filter.UserID = claims.UserID

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
