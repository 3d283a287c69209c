package handlers

import (
	"context"
	"net/http"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{Error: code, Message: message})
}

func validationError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "validation_error", err.Error())
}

// storageError maps a backend failure to a response the dashboard can act on.
// what names the failed operation, e.g. "load submissions".
func storageError(c *gin.Context, logger *zap.Logger, what string, err error) {
	category := services.ClassifyStorageError(err)
	status, code, message := http.StatusInternalServerError, "server_error", "Failed to "+what

	switch category {
	case services.CategoryNotFound:
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	case services.CategoryPermissionDenied:
		status, code, message = http.StatusBadGateway, "permission_denied", "The storage service denied access; check the service credentials"
	case services.CategoryNotConfigured:
		status, code, message = http.StatusServiceUnavailable, "storage_not_configured", "This feature is not set up on the server"
	case services.CategoryTimeout:
		status, code, message = http.StatusGatewayTimeout, "timeout", "The storage service did not answer in time"
	case services.CategoryUnavailable:
		status, code, message = http.StatusServiceUnavailable, "unavailable", "The storage service is unreachable"
	case services.CategoryInvalidInput:
		status, code, message = http.StatusBadRequest, "validation_error", err.Error()
	}

	if status >= 500 {
		logger.Error(what+" failed", zap.String("category", string(category)), zap.Error(err))
	}
	respondError(c, status, code, message)
}

func currentUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		respondError(c, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return "", false
	}
	id, _ := userID.(string)
	return id, true
}
