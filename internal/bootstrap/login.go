package bootstrap

import (
	"context"
	"net/url"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/flow"
	"github.com/devfury/ezcaretech-auth/internal/services"

	"github.com/sirupsen/logrus"
)

// Login runs a single authentication attempt without the HTTP layer.
// An empty realm means the configured one.
func Login(
	ctx context.Context,
	cfg *config.Config,
	logger *logrus.Logger,
	realm, username, password string,
) (flow.Outcome, error) {
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return flow.Outcome{}, err
	}
	defer func() {
		if err := app.close(); err != nil {
			logger.WithError(err).Warn("failed to release resources")
		}
	}()

	if realm == "" {
		realm = cfg.Realm
	}

	form := url.Values{
		services.FormUsername: {username},
		services.FormPassword: {password},
	}
	return app.Runner.Run(ctx, services.EzcaretechProviderID, realm, form)
}
