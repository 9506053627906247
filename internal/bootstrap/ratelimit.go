package bootstrap

import (
	"fmt"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
func setupRateLimiting(
	cfg *config.Config,
	logger logrus.FieldLogger,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		logger.Info("Rate limiting disabled")
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{login: noOpMiddleware}, nil
	}
	return createRateLimiters(cfg, logger, redisClient)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	logger logrus.FieldLogger,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)

	if storeType == middleware.RateLimitStoreRedis {
		logger.Info("Rate limiting enabled (store: redis, shared between instances)")
	} else {
		logger.Info("Rate limiting enabled (store: memory, single instance only)")
	}

	login, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.LoginRateLimit,
		StoreType:         storeType,
		RedisClient:       redisClient,
		Prefix:            "login",
		Logger:            logger,
	})
	if err != nil {
		return rateLimitMiddlewares{}, fmt.Errorf("failed to create rate limiter for login: %w", err)
	}

	return rateLimitMiddlewares{login: login}, nil
}
