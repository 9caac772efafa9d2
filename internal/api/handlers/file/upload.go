package file

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/files-manager/internal/models"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/File-Sharing-BondBridg/files-manager/internal/services/command"
	"github.com/gin-gonic/gin"
)

// uploadRequest is the JSON body of POST /files.
type uploadRequest struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	ParentID models.ParentID `json:"parentId"`
	IsPublic bool            `json:"isPublic"`
	Data     string          `json:"data"`
}

// decodeUploadRequest reads the body field by field. An empty body is an empty
// request, and a field of the wrong JSON type counts as absent, so the upload
// checks report the first missing field rather than a decode error. A
// mistyped parentId is kept verbatim and fails the parent lookup. Only a body
// that is not a JSON object is rejected here.
func decodeUploadRequest(body []byte) (uploadRequest, error) {
	var req uploadRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return req, err
	}

	_ = json.Unmarshal(fields["name"], &req.Name)
	_ = json.Unmarshal(fields["type"], &req.Type)
	_ = json.Unmarshal(fields["isPublic"], &req.IsPublic)
	_ = json.Unmarshal(fields["data"], &req.Data)
	if raw, ok := fields["parentId"]; ok {
		if err := json.Unmarshal(raw, &req.ParentID); err != nil {
			req.ParentID = models.ParentID(bytes.TrimSpace(raw))
		}
	}
	return req, nil
}

// Upload creates a folder, or a file/image from base64 data.
func (h *Handler) Upload(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		handlers.RespondError(c, h.logger, services.NewValidationError("Invalid body"))
		return
	}
	req, err := decodeUploadRequest(body)
	if err != nil {
		handlers.RespondError(c, h.logger, services.NewValidationError("Invalid body"))
		return
	}

	rec, err := h.commands.Upload(c.Request.Context(), userIDFromContext(c), command.UploadInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		handlers.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}
