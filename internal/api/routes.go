package api

import (
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers/file"
	"github.com/File-Sharing-BondBridg/files-manager/internal/api/handlers/user"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Token")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

// Deps groups what the routes need. RequireAuth and OptionalAuth are the
// session middlewares.
type Deps struct {
	Files        *file.Handler
	Users        *user.Handler
	Status       *handlers.StatusHandler
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", d.Status.Status)
	r.GET("/stats", d.Status.Stats)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Content is readable anonymously when the file is public
	r.GET("/files/:id/data", d.OptionalAuth, d.Files.GetContent)

	authed := r.Group("/", d.RequireAuth)
	{
		authed.GET("/users/me", d.Users.Me)

		// File endpoints
		authed.POST("/files", d.Files.Upload)
		authed.GET("/files", d.Files.ListFiles)
		authed.GET("/files/:id", d.Files.GetFile)
		authed.PUT("/files/:id/publish", d.Files.Publish)
		authed.PUT("/files/:id/unpublish", d.Files.Unpublish)
	}
}
