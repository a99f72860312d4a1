package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wedshare/media-service/internal/api/handlers"
	"github.com/wedshare/media-service/internal/api/middleware"
	"github.com/wedshare/media-service/internal/ratelimit"
)

// Deps bundles what the route table needs.
type Deps struct {
	Handler         *handlers.Handler
	Limiter         ratelimit.Limiter
	MaxRequestBytes int64
	AdminPassword   string
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORS())

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		api.POST("/upload",
			middleware.BodyLimit(deps.MaxRequestBytes),
			middleware.RateLimit(deps.Limiter),
			deps.Handler.Upload,
		)

		api.GET("/files", deps.Handler.ListFiles)
		api.GET("/raw/:name", deps.Handler.Raw)

		// Admin routes only exist when a password is configured.
		if deps.AdminPassword != "" {
			admin := api.Group("/admin", middleware.RequireAdmin(deps.AdminPassword))
			admin.GET("/files", deps.Handler.AdminFiles)
			admin.GET("/stats", deps.Handler.AdminStats)
		}
	}
}
