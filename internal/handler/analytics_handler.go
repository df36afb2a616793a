package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/middleware"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// AnalyticsHandler serves aggregate analytics endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc}
}

// window reads the from/to query params with a 30 day default.
func analyticsWindow(c *gin.Context) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			from = ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			to = ts
		}
	}
	return from, to
}

// Alerts godoc
// @Summary Alert analytics
// @Description Aggregate alert activity over a window
// @Tags Analytics
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/alerts [get]
func (h *AnalyticsHandler) Alerts(c *gin.Context) {
	from, to := analyticsWindow(c)
	analytics, cacheHit, err := h.service.Alerts(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, analytics, nil)
}

// Notifications godoc
// @Summary Notification analytics
// @Description Aggregate notification volume over a window
// @Tags Analytics
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/notifications [get]
func (h *AnalyticsHandler) Notifications(c *gin.Context) {
	from, to := analyticsWindow(c)
	analytics, cacheHit, err := h.service.Notifications(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, analytics, nil)
}

// System godoc
// @Summary System metrics
// @Description Process level counters for the analytics view
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	snapshot, err := h.service.System(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}
