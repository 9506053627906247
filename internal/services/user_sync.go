package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
	"github.com/devfury/ezcaretech-auth/internal/profile"
)

const (
	SyncActionCreated = "created"
	SyncActionUpdated = "updated"
)

// ErrHostDirectory marks any fault raised while writing the host user record
var ErrHostDirectory = errors.New("host directory fault")

// UserSynchroniser writes a ProjectedUser into the host directory
type UserSynchroniser struct {
	logger   logrus.FieldLogger
	recorder core.Recorder
}

func NewUserSynchroniser(logger logrus.FieldLogger, recorder core.Recorder) *UserSynchroniser {
	return &UserSynchroniser{
		logger:   logger,
		recorder: recorder,
	}
}

// Apply creates or updates the user named by projected in realm, sets its profile and
// attributes, enables it and grants the projected roles. All writes share one transaction.
// Roles that do not exist in the realm are skipped.
func (s *UserSynchroniser) Apply(
	ctx context.Context,
	dir core.Directory,
	realm string,
	projected *models.ProjectedUser,
) (*models.User, error) {
	if projected == nil || projected.Username == "" {
		return nil, fmt.Errorf("%w: projected user has no username", ErrHostDirectory)
	}

	var (
		synced *models.User
		action string
	)
	err := dir.Transaction(ctx, func(tx core.Directory) error {
		user, err := tx.GetUserByUsername(ctx, realm, projected.Username)
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}

		action = SyncActionUpdated
		if user == nil {
			action = SyncActionCreated
			if user, err = tx.AddUser(ctx, realm, projected.Username); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
		}

		user.FirstName = projected.FirstName
		user.LastName = projected.LastName
		user.Email = projected.Email
		user.Enabled = true
		user.EmailVerified = true
		if err := tx.SaveUser(ctx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		for _, attr := range profile.Attributes(projected) {
			if err := tx.SetSingleAttribute(ctx, user, attr.Name, attr.Value); err != nil {
				return fmt.Errorf("set attribute %s: %w", attr.Name, err)
			}
		}

		if err := s.grantRoles(ctx, tx, realm, user, projected.Roles); err != nil {
			return err
		}

		synced, err = tx.GetUserByUsername(ctx, realm, projected.Username)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		if synced == nil {
			return fmt.Errorf("user %q missing after sync", projected.Username)
		}
		return nil
	})
	if err != nil {
		s.recordError("user_sync")
		return nil, fmt.Errorf("%w: %w", ErrHostDirectory, err)
	}

	if s.recorder != nil {
		s.recorder.RecordUserSync(action)
	}
	return synced, nil
}

func (s *UserSynchroniser) grantRoles(
	ctx context.Context,
	tx core.Directory,
	realm string,
	user *models.User,
	roles []string,
) error {
	for _, name := range roles {
		role, err := tx.GetRole(ctx, realm, name)
		if err != nil {
			return fmt.Errorf("resolve role %s: %w", name, err)
		}
		if role == nil {
			s.logger.WithFields(logrus.Fields{
				"realm":    realm,
				"username": user.Username,
				"role":     name,
			}).Debug("role not found in realm, skipping grant")
			continue
		}
		if err := tx.GrantRole(ctx, user, role); err != nil {
			return fmt.Errorf("grant role %s: %w", name, err)
		}
	}
	return nil
}

func (s *UserSynchroniser) recordError(operation string) {
	if s.recorder != nil {
		s.recorder.RecordDatabaseQueryError(operation)
	}
}
