package core

import (
	"context"
	"net/url"

	"github.com/devfury/ezcaretech-auth/internal/models"
)

// FlowError classifies a failed authentication step
type FlowError string

const (
	FlowErrorInvalidUser   FlowError = "invalid_user"
	FlowErrorInternalError FlowError = "internal_error"
)

// ChallengeResponse is the HTTP response a step asks the host to send on failure
type ChallengeResponse struct {
	Status      int
	ContentType string
	Body        string
}

// FlowContext is the host's view of one login attempt, handed to an Authenticator
type FlowContext interface {
	Context() context.Context
	Realm() string
	Form() url.Values
	Directory() Directory

	SetUser(user *models.User)
	User() *models.User

	Success()
	Failure(err FlowError, response *ChallengeResponse)
}

// Authenticator is one step of the host's login pipeline
type Authenticator interface {
	// Authenticate is invoked once per login attempt and must report
	// Success or Failure on the flow context.
	Authenticate(fc FlowContext)
	// Action is invoked when the user answers a challenge issued by the step.
	Action(fc FlowContext)
	RequiresUser() bool
	ConfiguredFor(ctx context.Context, dir Directory, realm string, user *models.User) bool
	SetRequiredActions(ctx context.Context, dir Directory, realm string, user *models.User)
	Close() error
}

// AuthenticatorFactory registers a step with the host and creates one instance per attempt
type AuthenticatorFactory interface {
	ID() string
	DisplayType() string
	HelpText() string
	ReferenceCategory() string
	Create() Authenticator
}
