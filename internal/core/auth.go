package core

import (
	"context"

	"github.com/devfury/ezcaretech-auth/internal/models"
)

// BackendClient is the interface the external credential backend must implement.
//
// AcquireToken returns an empty token and a nil error when the backend rejects the
// credentials. Any other failure is returned as an error.
type BackendClient interface {
	AcquireToken(ctx context.Context, username, password string) (string, error)
	FetchProfile(ctx context.Context, token string) (*models.ProfileResponse, error)
	Name() string
}
