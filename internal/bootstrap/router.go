package bootstrap

import (
	"net/http"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/metrics"
	"github.com/devfury/ezcaretech-auth/internal/middleware"
	"github.com/devfury/ezcaretech-auth/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sessionCookieName = "ezauth_session"

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	db *store.Store,
	h handlerSet,
	recorder metrics.Recorder,
	redisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg, logger)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	setupSessionMiddleware(r, cfg)

	r.GET("/health", createHealthCheckHandler(db))

	setupMetricsEndpoint(r, cfg, logger)

	rateLimiters, err := setupRateLimiting(cfg, logger, redisClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up rate limiting")
	}

	setupAllRoutes(r, h, rateLimiters)

	logServerStartup(cfg, logger)

	return r
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config, logger logrus.FieldLogger) {
	switch {
	case !cfg.MetricsEnabled:
		logger.Info("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		logger.Info("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		logger.Info("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(r *gin.Engine, h handlerSet, rateLimiters rateLimitMiddlewares) {
	realms := r.Group("/realms/:realm")
	{
		realms.POST("/login", rateLimiters.login, h.auth.Login)
		realms.POST("/logout", h.auth.Logout)
		realms.GET("/users/:username", middleware.RequireSession(), h.user.GetUser)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(c.Request.Context()); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config, logger logrus.FieldLogger) {
	gin.SetMode(ginModeMap[cfg.IsProduction])
	logger.Infof("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config, logger logrus.FieldLogger) {
	logger.WithFields(logrus.Fields{
		"addr":  cfg.ServerAddr,
		"realm": cfg.Realm,
	}).Info("Ezcaretech authentication server starting")
	logger.Infof("Login endpoint: %s/realms/%s/login", cfg.BaseURL, cfg.Realm)
}
