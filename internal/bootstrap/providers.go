package bootstrap

import (
	"errors"
	"fmt"

	"github.com/devfury/ezcaretech-auth/internal/auth"
	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/services"

	"github.com/sirupsen/logrus"
)

var errRedisClientMissing = errors.New("redis client is required but was not initialized")

// initializeBizBoxClient creates the BizBox backend client
func initializeBizBoxClient(
	cfg *config.Config,
	recorder core.Recorder,
	logger logrus.FieldLogger,
) (*auth.BizBoxClient, error) {
	client, err := auth.NewBizBoxClient(cfg, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create BizBox client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"token_url":   cfg.BizBoxTokenURL,
		"profile_url": cfg.BizBoxProfileURL,
		"auth_mode":   cfg.BizBoxAuthMode,
	}).Info("BizBox backend configured")
	return client, nil
}

// initializeRegistry registers every authentication step this server offers
func initializeRegistry(
	cfg *config.Config,
	client core.BackendClient,
	logger logrus.FieldLogger,
	recorder core.Recorder,
) (*flow.Registry, error) {
	registry := flow.NewRegistry()

	if err := registry.Register(
		services.NewEzcaretechFactory(client, cfg.DefaultRoles, logger, recorder),
	); err != nil {
		return nil, fmt.Errorf("failed to register authenticator: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"providers":     registry.IDs(),
		"default_roles": cfg.DefaultRoles,
	}).Info("Authentication flow initialized")
	return registry, nil
}
