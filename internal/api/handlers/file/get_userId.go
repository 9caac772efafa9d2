package file

import (
	"github.com/File-Sharing-BondBridg/files-manager/cmd/middleware"
	"github.com/gin-gonic/gin"
)

// userIDFromContext returns the id stored by the auth middleware, or "" for
// anonymous requests.
func userIDFromContext(c *gin.Context) string {
	return middleware.UserID(c)
}
