package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// NavigationHandler exposes the role filtered navigation menu.
type NavigationHandler struct {
	service *service.NavigationService
}

// NewNavigationHandler creates a new navigation handler.
func NewNavigationHandler(svc *service.NavigationService) *NavigationHandler {
	return &NavigationHandler{service: svc}
}

// Entries godoc
// @Summary Navigation entries
// @Description Menu entries visible to the caller's role
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /navigation [get]
func (h *NavigationHandler) Entries(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entries := h.service.Entries(claims.Role)
	response.JSON(c, http.StatusOK, entries, nil)
}
