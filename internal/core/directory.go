package core

import (
	"context"

	"github.com/devfury/ezcaretech-auth/internal/models"
)

// Directory is the host user directory as seen by authentication steps.
// Lookups return a nil record and a nil error when nothing matches.
type Directory interface {
	GetUserByUsername(ctx context.Context, realm, username string) (*models.User, error)
	AddUser(ctx context.Context, realm, username string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	SetSingleAttribute(ctx context.Context, user *models.User, name string, value *string) error
	GetRole(ctx context.Context, realm, name string) (*models.Role, error)
	GrantRole(ctx context.Context, user *models.User, role *models.Role) error

	// Transaction runs fn against a directory bound to one database transaction.
	// The transaction is rolled back when fn returns an error.
	Transaction(ctx context.Context, fn func(tx Directory) error) error
}
