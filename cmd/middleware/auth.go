// cmd/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/File-Sharing-BondBridg/files-manager/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	TokenHeader = "X-Token"
	UserIDKey   = "user_id"
)

// UserResolver maps a session token to a user id.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// RequireAuth rejects the request unless X-Token resolves to a user.
func RequireAuth(gate UserResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := gate.ResolveUser(c.Request.Context(), c.GetHeader(TokenHeader))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthorized) {
				logger.Error("[AUTH] session lookup failed", "error", err)
			}
			status, msg := services.StatusFor(err)
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the user id when X-Token resolves and lets anonymous
// requests through otherwise.
func OptionalAuth(gate UserResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)
		if token != "" {
			userID, err := gate.ResolveUser(c.Request.Context(), token)
			switch {
			case err == nil:
				c.Set(UserIDKey, userID)
			case errors.Is(err, services.ErrUnauthorized):
				// treated as anonymous
			default:
				logger.Error("[AUTH] session lookup failed", "error", err)
				status, msg := services.StatusFor(err)
				c.AbortWithStatusJSON(status, gin.H{"error": msg})
				return
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
