package api

import (
	"errors"
	"log"
	"net/http"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorizedFile):
		return http.StatusForbidden
	case errors.Is(err, services.ErrRelayNotConfigured):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Failed table writes carry the
// intended content so the client can offer it as a download.
func respondError(c *gin.Context, err error) {
	var failure *database.WriteFailure
	if errors.As(err, &failure) {
		log.Printf("❌ Write to %s failed: %v", failure.FileName, failure.Err)
		c.JSON(http.StatusServiceUnavailable, models.FailedWriteResponse{
			Success: false,
			Error:   "Failed to save " + failure.FileName,
			Fallback: models.DownloadFallback{
				FileName:   failure.FileName,
				CSVContent: failure.Content,
			},
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// badRequest answers 400 for malformed request bodies.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid request data: " + err.Error(),
	})
}
