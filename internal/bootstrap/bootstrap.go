package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/devfury/ezcaretech-auth/internal/auth"
	"github.com/devfury/ezcaretech-auth/internal/cache"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/metrics"
	"github.com/devfury/ezcaretech-auth/internal/store"
	"github.com/devfury/ezcaretech-auth/internal/version"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config
	Logger *logrus.Logger

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder metrics.Recorder
	MetricsCache    cache.Cache[int64]
	RedisClient     *redis.Client

	// Authentication
	BizBox   *auth.BizBoxClient
	Registry *flow.Registry
	Runner   *flow.Runner

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	logger.WithFields(version.Get().Fields()).Infof("Starting %s", version.App)

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// newApplication runs the phases shared by the server and the login command
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *logrus.Logger,
) (*Application, error) {
	app := &Application{
		Config: cfg,
		Logger: logger,
	}

	// Phase 1: Validate configuration
	if err := validateConfiguration(cfg); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.close()
		return nil, err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}

// initializeInfrastructure sets up database, metrics, Redis and the metrics cache
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}
	app.Logger.WithFields(logrus.Fields{
		"driver": app.Config.DatabaseDriver,
		"realm":  app.Config.Realm,
	}).Info("Database initialized")

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config, app.Logger)

	// Redis (rate limiting and metrics cache)
	app.RedisClient, err = initializeRedisClient(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}

	app.MetricsCache, err = initializeMetricsCache(app.Config, app.RedisClient, app.Logger)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer builds the BizBox client and the authentication flow
func (app *Application) initializeBusinessLayer() error {
	var err error

	app.BizBox, err = initializeBizBoxClient(app.Config, app.MetricsRecorder, app.Logger)
	if err != nil {
		return err
	}

	app.Registry, err = initializeRegistry(app.Config, app.BizBox, app.Logger, app.MetricsRecorder)
	if err != nil {
		return err
	}

	app.Runner = flow.NewRunner(app.Registry, app.DB, app.Logger)
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(app.Config, app.Runner, app.DB, app.Logger)

	app.Router = setupRouter(
		app.Config,
		app.Logger,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server, app.Logger)
	addServerShutdownJob(m, app.Server, app.Config, app.Logger)
	addUsersGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache, app.Logger)
	addMetricsCacheShutdownJob(m, app.MetricsCache, app.Logger)
	addRedisClientShutdownJob(m, app.RedisClient, app.Logger)
	addDatabaseShutdownJob(m, app.DB, app.Logger)

	<-m.Done()
}

// close releases whatever infrastructure was opened so far
func (app *Application) close() error {
	var errs []error
	if app.MetricsCache != nil {
		errs = append(errs, app.MetricsCache.Close())
	}
	if app.RedisClient != nil {
		errs = append(errs, app.RedisClient.Close())
	}
	if app.DB != nil {
		errs = append(errs, app.DB.Close())
	}
	return errors.Join(errs...)
}
