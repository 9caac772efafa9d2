package file

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetFile(c *gin.Context) {
	rec, err := h.queries.GetByID(c.Request.Context(), userIDFromContext(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListFiles returns one page of the caller's records under ?parentId=.
// A missing or unparsable page is page 0.
func (h *Handler) ListFiles(c *gin.Context) {
	page := parsePage(c.DefaultQuery("page", "0"))
	parentID := models.ParseParentID(c.DefaultQuery("parentId", "0"))

	files, err := h.queries.List(c.Request.Context(), userIDFromContext(c), parentID, page)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

// GetContent serves the raw bytes of a file or one of its thumbnails.
func (h *Handler) GetContent(c *gin.Context) {
	size := 0
	if s := c.Query("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			handlers.RespondError(c, h.logger, services.NewValidationError("Invalid size"))
			return
		}
		size = n
	}

	content, err := h.queries.Content(c.Request.Context(), userIDFromContext(c), c.Param("id"), size)
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, content.ContentType, content.Data)
}

// parsePage clamps out-of-range numbers instead of discarding them, so a page
// too large for an int still lands past the end.
func parsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if page < 0 {
		return 0
	}
	return page
}
