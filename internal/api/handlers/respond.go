package handlers

import (
	"log/slog"
	"net/http"

	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/gin-gonic/gin"
)

// RespondError writes the {"error": msg} body for err. Server-side failures
// are logged with their cause.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	status, msg := services.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("[HTTP] request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
