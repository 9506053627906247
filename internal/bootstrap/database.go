package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/config"
	"github.com/devfury/ezcaretech-auth/internal/store"
)

// initializeDatabase opens the host directory and seeds the configured realm
func initializeDatabase(
	ctx context.Context,
	cfg *config.Config,
	logger logrus.FieldLogger,
) (*store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, cfg, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}
