package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	appErrors "github.com/Gilbert-2/security-threat-detection-sub000/pkg/errors"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/response"
)

// DetectionHandler accepts camera clips for fight detection.
type DetectionHandler struct {
	service *service.DetectionService
}

// NewDetectionHandler creates a new detection handler.
func NewDetectionHandler(svc *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{service: svc}
}

// Predict godoc
// @Summary Analyze a clip
// @Description Run fight detection on an uploaded video clip and raise an alert when violence is found
// @Tags Detection
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video clip"
// @Param camera formData string true "Camera identifier"
// @Param location formData string false "Camera location"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /detect [post]
func (h *DetectionHandler) Predict(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing clip upload"))
		return
	}
	clip, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable clip upload"))
		return
	}
	defer clip.Close()

	camera := c.PostForm("camera")
	location := c.PostForm("location")

	result, err := h.service.Analyze(c.Request.Context(), fileHeader.Filename, camera, location, clip, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
