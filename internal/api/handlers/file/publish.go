package file

import (
	"net/http"

	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Publish(c *gin.Context) {
	h.setPublic(c, true)
}

func (h *Handler) Unpublish(c *gin.Context) {
	h.setPublic(c, false)
}

func (h *Handler) setPublic(c *gin.Context, isPublic bool) {
	rec, err := h.commands.SetPublic(c.Request.Context(), userIDFromContext(c), c.Param("id"), isPublic)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
