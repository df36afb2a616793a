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

// AlertHandler handles security alert endpoints.
type AlertHandler struct {
	service *service.AlertService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(svc *service.AlertService) *AlertHandler {
	return &AlertHandler{service: svc}
}

// List godoc
// @Summary List alerts
// @Description List alerts with pagination and filtering
// @Tags Alerts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Param status query string false "Status filter"
// @Param severity query string false "Severity filter"
// @Param camera query string false "Camera filter"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	var filter models.AlertFilter
	filter.Page, filter.PageSize = pageParams(c)

	if status := c.Query("status"); status != "" {
		s := models.AlertStatus(status)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown alert status"))
			return
		}
		filter.Status = &s
	}
	if severity := c.Query("severity"); severity != "" {
		s := models.AlertSeverity(severity)
		if !s.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown alert severity"))
			return
		}
		filter.Severity = &s
	}
	filter.Camera = c.Query("camera")
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
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	alerts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, pagination)
}

// Get godoc
// @Summary Get alert
// @Description Get alert detail including executed response actions
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /alerts/{id} [get]
func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alert, nil)
}

// Create godoc
// @Summary Create alert
// @Description Raise an alert manually
// @Tags Alerts
// @Accept json
// @Produce json
// @Param payload body service.CreateAlertRequest true "Alert payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /alerts [post]
func (h *AlertHandler) Create(c *gin.Context) {
	var req service.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	alert, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, alert, nil)
}

// UpdateStatus godoc
// @Summary Update alert status
// @Description Transition an alert; illegal transitions return 409
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Param payload body service.UpdateAlertStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /alerts/{id}/status [patch]
func (h *AlertHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	alert, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alert, nil)
}

// Assign godoc
// @Summary Assign alert
// @Description Hand an alert to a user
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Success 204 {object} nil
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /alerts/{id}/assign [patch]
func (h *AlertHandler) Assign(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.service.Assign(c.Request.Context(), c.Param("id"), req.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
