// Package api - Router setup
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aethra/marketconsole/internal/config"
)

// RouterOptions carries the configuration the router needs
type RouterOptions struct {
	Session config.SessionConfig
	CORS    config.CORSConfig
	Logger  *zap.Logger
}

// SetupRouter creates and configures the Gin router
func SetupRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(Recovery(logger), RequestLogger(logger.Named("access")))

	// ==========================================================================
	// JSON API - health and session probes for tooling
	// ==========================================================================
	corsConfig := cors.Config{
		AllowOrigins:     opts.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: opts.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = config.Default().CORS.AllowedOrigins
	}

	api := r.Group("/api")
	api.Use(cors.New(corsConfig))
	{
		api.GET("/health", handler.Health)
		api.GET("/session", handler.SessionMiddleware(opts.Session), handler.SessionInfo)
	}

	// ==========================================================================
	// CONSOLE - server-rendered page and form posts
	// ==========================================================================
	page := r.Group("/")
	page.Use(handler.SessionMiddleware(opts.Session))
	{
		page.GET("/", handler.Page)
		page.GET("/login", handler.Page)
		page.POST("/login", handler.Login)
		page.POST("/logout", handler.Logout)
	}

	protected := r.Group("/")
	protected.Use(handler.SessionMiddleware(opts.Session))
	protected.Use(handler.RequireLoginMiddleware())
	{
		protected.GET("/sections/:name", handler.Section)
		protected.GET("/export", handler.Export)
		protected.POST("/settings", handler.Settings)

		protected.GET("/modals/:kind/:id", handler.OpenModal)
		protected.POST("/modals/:kind/save", handler.SaveRecord)
		protected.POST("/modals/:kind/close", handler.CloseModal)

		protected.POST("/records/:resource/:id/delete", handler.RequestDelete)
		protected.POST("/records/:resource/:id/delete/confirm", handler.ConfirmDelete)
		protected.POST("/records/:resource/:id/action/:action", handler.RunAction)

		protected.POST("/batch/:action", handler.Batch)
	}

	return r
}
