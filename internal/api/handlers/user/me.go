package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/File-Sharing-BondBridg/files-manager/cmd/middleware"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/gin-gonic/gin"
)

// Directory looks up accounts.
type Directory interface {
	Me(ctx context.Context, userID string) (models.User, error)
}

type Handler struct {
	users  Directory
	logger *slog.Logger
}

func NewHandler(users Directory, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Me returns the authenticated user's account.
func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
