package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/middleware"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) models.LoginRequest {
	return models.LoginRequest{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// pageParams reads the shared page/page_size query parameters.
func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(models.DefaultPageSize)))
	return page, pageSize
}
