package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// ResponseRuleHandler handles automated response rule endpoints.
type ResponseRuleHandler struct {
	service *service.ResponseRuleService
}

// NewResponseRuleHandler creates a new response rule handler.
func NewResponseRuleHandler(svc *service.ResponseRuleService) *ResponseRuleHandler {
	return &ResponseRuleHandler{service: svc}
}

// List godoc
// @Summary List rules
// @Description List response rules with pagination and filtering
// @Tags ResponseRules
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (5, 10, 20 or 50)"
// @Param status query string false "Status filter (active or inactive)"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules [get]
func (h *ResponseRuleHandler) List(c *gin.Context) {
	var filter models.RuleFilter
	filter.Page, filter.PageSize = pageParams(c)
	if status := c.Query("status"); status != "" {
		s := models.RuleStatus(status)
		filter.Status = &s
	}
	filter.Search = c.Query("search")

	rules, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, pagination)
}

// Get godoc
// @Summary Get rule
// @Description Get response rule detail
// @Tags ResponseRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules/{id} [get]
func (h *ResponseRuleHandler) Get(c *gin.Context) {
	rule, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Create godoc
// @Summary Create rule
// @Description Create a rule; new rules start inactive
// @Tags ResponseRules
// @Accept json
// @Produce json
// @Param payload body service.RuleRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules [post]
func (h *ResponseRuleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rule, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, rule, nil)
}

// Update godoc
// @Summary Update rule
// @Description Update a rule's definition; activation status is untouched
// @Tags ResponseRules
// @Accept json
// @Produce json
// @Param id path string true "Rule ID"
// @Param payload body service.RuleRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules/{id} [put]
func (h *ResponseRuleHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	rule, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Activate godoc
// @Summary Activate rule
// @Description Turn a rule on
// @Tags ResponseRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 {object} nil
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules/{id}/activate [post]
func (h *ResponseRuleHandler) Activate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Activate(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Deactivate godoc
// @Summary Deactivate rule
// @Description Turn a rule off
// @Tags ResponseRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 {object} nil
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules/{id}/deactivate [post]
func (h *ResponseRuleHandler) Deactivate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete rule
// @Description Permanently remove a rule
// @Tags ResponseRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 {object} nil
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /response-rules/{id} [delete]
func (h *ResponseRuleHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
