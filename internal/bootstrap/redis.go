package bootstrap

import (
	"context"
	"fmt"

	"github.com/devfury/ezcaretech-auth/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// redisRequired reports whether any component is configured to use Redis
func redisRequired(cfg *config.Config) bool {
	rateLimit := cfg.EnableRateLimit && cfg.RateLimitStore == config.RateLimitStoreRedis
	metricsCache := cfg.MetricsEnabled && cfg.MetricsGaugeUpdateEnabled &&
		cfg.MetricsCacheType == config.MetricsCacheTypeRedis
	return rateLimit || metricsCache
}

// initializeRedisClient initializes the shared go-redis client.
// Returns nil if neither the rate limiter nor the metrics cache uses Redis.
// Note: rate limiting must use go-redis because ulule/limiter depends on go-redis types.
func initializeRedisClient(
	ctx context.Context,
	cfg *config.Config,
	logger logrus.FieldLogger,
) (*redis.Client, error) {
	if !redisRequired(cfg) {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.WithFields(logrus.Fields{
		"address": cfg.RedisAddr,
		"db":      cfg.RedisDB,
	}).Info("Redis client initialized")
	return client, nil
}
