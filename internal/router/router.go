package router

import (
	"time"

	"github.com/anonto42/daoplus/backend/internal/handlers"
	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/anonto42/daoplus/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options carries the auth settings the routes need.
type Options struct {
	JWTSecret       string
	TokenTTL        time.Duration
	ModeratorEmails []string
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(config.RequestLogger(logger))
	e.Use(eMiddleware.CORS())
	logger.Debug("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, service *services.SocialGraphService, opts Options, logger *zap.Logger) {
	// Always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(service, opts.JWTSecret, opts.TokenTTL, opts.ModeratorEmails).RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))

	handlers.NewUserHandler(service).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(service).RegisterFollowRoutes(api)
	handlers.NewPostHandler(service).RegisterPostRoutes(api)
	handlers.NewLikeHandler(service).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(service).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(service).RegisterNotificationRoutes(api)
	handlers.NewRewardHandler(service).RegisterRewardRoutes(api)

	// --- Moderator routes ---
	admin := api.Group("/admin", middleware.RequireModerator())
	handlers.NewModerationHandler(service).RegisterModerationRoutes(admin)

	logger.Info("routes configured", zap.Int("count", len(e.Routes())))
}
