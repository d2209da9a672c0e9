package handler

import (
	"context"
	"net/http"
	"time"

	"school-notifier/internal/domain/user"
	"school-notifier/internal/handler/api"
	"school-notifier/internal/handler/middleware"
	"school-notifier/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// HealthFunc reports whether the service's dependencies are reachable.
type HealthFunc func(ctx context.Context) error

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, checkHandler *api.CheckHandler, authMiddleware *middleware.AuthMiddleware, health HealthFunc) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, checkHandler, authMiddleware, health)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, checkHandler *api.CheckHandler, authMiddleware *middleware.AuthMiddleware, health HealthFunc) {
	engine.GET("/health", healthCheck(health))

	apiGroup := engine.Group("/api")
	{
		checksGroup := apiGroup.Group("/checks")
		checksGroup.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(user.RoleAdmin))
		addRoutes(checksGroup, []route{
			{Method: http.MethodPost, Path: "/run", Handler: checkHandler.RunAll},
			{Method: http.MethodPost, Path: "/:kind/run", Handler: checkHandler.RunOne},
		})
	}
}

func healthCheck(health HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if health != nil {
			if err := health(ctx); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "Database unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Service is healthy"})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
