package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/devfury/ezcaretech-auth/internal/cache"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/metrics"
	"github.com/devfury/ezcaretech-auth/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server, logger logrus.FieldLogger) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Fatal("Failed to start server")
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(
	m *graceful.Manager,
	srv *http.Server,
	cfg *config.Config,
	logger logrus.FieldLogger,
) {
	m.AddShutdownJob(func() error {
		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server forced to shutdown")
			return err
		}

		logger.Info("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(
	m *graceful.Manager,
	redisClient *redis.Client,
	logger logrus.FieldLogger,
) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		logger.Info("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Error("Error closing Redis client")
			return err
		}
		logger.Info("Redis connection closed")
		return nil
	})
}

// addDatabaseShutdownJob closes the database pool
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store, logger logrus.FieldLogger) {
	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Error closing database")
			return err
		}
		logger.Info("Database closed")
		return nil
	})
}

// addMetricsCacheShutdownJob closes the metrics cache on shutdown
func addMetricsCacheShutdownJob(
	m *graceful.Manager,
	metricsCache cache.Cache[int64],
	logger logrus.FieldLogger,
) {
	if metricsCache == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := metricsCache.Close(); err != nil {
			logger.WithError(err).Error("Error closing metrics cache")
		} else {
			logger.Info("Metrics cache closed")
		}
		return nil
	})
}

// userCounter is the query behind the users gauge
type userCounter interface {
	CountUsers(ctx context.Context, realm string) (int64, error)
}

// addUsersGaugeUpdateJob adds the periodic users gauge update job
func addUsersGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db userCounter,
	recorder metrics.Recorder,
	metricsCache cache.Cache[int64],
	logger logrus.FieldLogger,
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}

	errLog := newErrorLogger(logger)

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		// Update immediately on startup
		updateUsersGauge(ctx, cfg, db, recorder, metricsCache, errLog)

		for {
			select {
			case <-ticker.C:
				updateUsersGauge(ctx, cfg, db, recorder, metricsCache, errLog)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// updateUsersGauge refreshes the users gauge through the cache.
// The cache TTL matches the update interval so instances sharing Redis query the database once per interval.
func updateUsersGauge(
	ctx context.Context,
	cfg *config.Config,
	db userCounter,
	recorder metrics.Recorder,
	metricsCache cache.Cache[int64],
	errLog *errorLogger,
) {
	count, err := cache.GetWithFetch(
		ctx,
		metricsCache,
		"users:"+cfg.Realm,
		cfg.MetricsGaugeUpdateInterval,
		func(ctx context.Context, _ string) (int64, error) {
			return db.CountUsers(ctx, cfg.Realm)
		},
	)
	if err != nil {
		recorder.RecordDatabaseQueryError("count_users")
		errLog.logIfNeeded("count_users", err)
		return
	}
	recorder.SetUsersCount(cfg.Realm, int(count))
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	mu              sync.Mutex
	logger          logrus.FieldLogger
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger(logger logrus.FieldLogger) *errorLogger {
	return &errorLogger{
		logger:          logger,
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute, // Log at most once per 5 minutes per operation
	}
}

// logIfNeeded logs an error only if rate limit allows.
// Reports whether the error was logged.
func (e *errorLogger) logIfNeeded(operation string, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	if last, ok := e.lastErrorTimes[operation]; ok && now.Sub(last) < e.rateLimitWindow {
		return false
	}

	e.logger.WithError(err).WithFields(logrus.Fields{
		"operation":   operation,
		"suppression": e.rateLimitWindow.String(),
	}).Error("Database query failed (further errors will be suppressed)")
	e.lastErrorTimes[operation] = now
	return true
}
