package bootstrap

import (
	"github.com/devfury/ezcaretech-auth/internal/cache"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const metricsCacheKeyPrefix = "ezauth:metrics:"

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config, logger logrus.FieldLogger) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		logger.Info("Prometheus metrics initialized")
	} else {
		logger.Info("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeMetricsCache creates the cache in front of the gauge queries.
// Returns nil when gauge updates are off.
func initializeMetricsCache(
	cfg *config.Config,
	redisClient *redis.Client,
	logger logrus.FieldLogger,
) (cache.Cache[int64], error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil //nolint:nilnil // gauge job disabled
	}

	switch cfg.MetricsCacheType {
	case config.MetricsCacheTypeRedis:
		if redisClient == nil {
			return nil, errRedisClientMissing
		}
		logger.WithField("addr", cfg.RedisAddr).Info("Metrics cache: redis")
		return cache.NewRedisCache[int64](redisClient, metricsCacheKeyPrefix), nil
	default:
		logger.Info("Metrics cache: memory (single instance only)")
		return cache.NewMemoryCache[int64](), nil
	}
}
