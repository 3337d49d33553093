package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/autos-marketplace/internal/auth"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/handler"
	"github.com/ErlanBelekov/autos-marketplace/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	HSTS           bool
}

func NewRouter(
	logger *slog.Logger,
	cfg RouterConfig,
	sessions *auth.Sessions,
	authHandler *handler.AuthHandler,
	autoHandler *handler.AutoHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		Filters:          []sloggin.Filter{sloggin.IgnorePath("/health")},
	}))
	r.Use(middleware.Metrics())
	r.Use(middleware.Deadline(cfg.RequestTimeout))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Route not found"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	authMW := middleware.Auth(sessions)

	authRoutes := r.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.GET("/verify", authHandler.Verify)
	authRoutes.POST("/login", authHandler.Login)

	r.GET("/profile/me", authMW, handler.Me)

	// Browsing is public; changing the catalogue needs a session.
	autos := r.Group("/autos")
	autos.GET("", autoHandler.List)
	autos.GET("/:id", autoHandler.GetByID)
	autos.POST("", authMW, autoHandler.Create)
	autos.PUT("/:id", authMW, autoHandler.Update)
	autos.DELETE("/:id", authMW, autoHandler.Delete)

	return r
}
