package bootstrap

import (
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/handlers"
	"github.com/devfury/ezcaretech-auth/internal/services"

	"github.com/sirupsen/logrus"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth *handlers.AuthHandler
	user *handlers.UserHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	runner *flow.Runner,
	dir core.Directory,
	logger logrus.FieldLogger,
) handlerSet {
	return handlerSet{
		auth: handlers.NewAuthHandler(runner, services.EzcaretechProviderID, cfg.Realm, logger),
		user: handlers.NewUserHandler(dir, logger),
	}
}
