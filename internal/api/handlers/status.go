package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/gin-gonic/gin"
)

// Probe reports whether a backing store is reachable.
type Probe func(ctx context.Context) bool

// StatsSource supplies the global counters.
type StatsSource interface {
	Stats(ctx context.Context) (models.Stats, error)
}

type StatusHandler struct {
	sessions Probe
	metadata Probe
	stats    StatsSource
	logger   *slog.Logger
}

func NewStatusHandler(sessions, metadata Probe, stats StatsSource, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{sessions: sessions, metadata: metadata, stats: stats, logger: logger}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status reports the reachability of the session store and the metadata store.
func (h *StatusHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"redis": h.sessions(ctx),
		"db":    h.metadata(ctx),
	})
}

func (h *StatusHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
