package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/langaide/langaide/pkg/errors"
)

// writeError maps an application error to an HTTP response. Upstream
// and internal failures are redacted: the caller gets a generic
// message, the detail goes to the log only.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsInvalidInput(err), apperrors.IsAlreadyExists(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": safeMessage(err)})
	case apperrors.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": safeMessage(err)})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process your message"})
	}
}

// safeMessage returns the caller-facing half of an AppError.
func safeMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "invalid request"
}
