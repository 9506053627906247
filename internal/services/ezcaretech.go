package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
	"github.com/devfury/ezcaretech-auth/internal/profile"
)

const (
	EzcaretechProviderID        = "ezcaretech-authenticator"
	EzcaretechDisplayType       = "Ezcaretech Authenticator"
	EzcaretechReferenceCategory = "ezcaretech"
	EzcaretechHelpText          = "Validates username and password against BizBox and provisions the user locally."

	// UnauthorizedMessage is the body of every InvalidUser challenge
	UnauthorizedMessage = "You must be authenticated to access this resource."

	// Form fields read by the step
	FormUsername = "username"
	FormPassword = "password"
)

// Login outcomes reported to metrics and logs
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidUser   = "invalid_user"
	OutcomeInternalError = "internal_error"
)

// ErrCredentialRejected classifies an attempt the user must retry with other credentials
var ErrCredentialRejected = errors.New("credentials rejected")

// attemptState tracks how far an attempt progressed, for logging
type attemptState string

const (
	stateStart      attemptState = "start"
	stateVerifying  attemptState = "verifying"
	stateProjecting attemptState = "projecting"
	stateSyncing    attemptState = "syncing"
	stateDone       attemptState = "done"
)

// Ensure EzcaretechAuthenticator implements core.Authenticator at compile time
var _ core.Authenticator = (*EzcaretechAuthenticator)(nil)

// EzcaretechAuthenticator verifies credentials against BizBox and provisions the
// matching member as a host user. One instance serves one login attempt.
type EzcaretechAuthenticator struct {
	client    core.BackendClient
	projector *profile.Projector
	sync      *UserSynchroniser
	logger    logrus.FieldLogger
	recorder  core.Recorder
}

func NewEzcaretechAuthenticator(
	client core.BackendClient,
	projector *profile.Projector,
	sync *UserSynchroniser,
	logger logrus.FieldLogger,
	recorder core.Recorder,
) *EzcaretechAuthenticator {
	return &EzcaretechAuthenticator{
		client:    client,
		projector: projector,
		sync:      sync,
		logger:    logger,
		recorder:  recorder,
	}
}

// Authenticate runs one attempt and reports exactly one outcome on fc
func (a *EzcaretechAuthenticator) Authenticate(fc core.FlowContext) {
	start := time.Now()
	form := fc.Form()
	username := form.Get(FormUsername)
	password := form.Get(FormPassword)

	log := a.logger.WithFields(logrus.Fields{
		"realm":    fc.Realm(),
		"username": username,
		"provider": a.client.Name(),
	})

	state, user, err := a.run(fc.Context(), fc.Directory(), fc.Realm(), username, password)
	log = log.WithField("state", state)

	switch {
	case err == nil:
		fc.SetUser(user)
		fc.Success()
		a.observe(OutcomeSuccess, start)
		log.WithField("outcome", OutcomeSuccess).Info("user authenticated")

	case errors.Is(err, ErrCredentialRejected):
		fc.Failure(core.FlowErrorInvalidUser, &core.ChallengeResponse{
			Status:      http.StatusUnauthorized,
			ContentType: "text/plain; charset=utf-8",
			Body:        UnauthorizedMessage,
		})
		a.observe(OutcomeInvalidUser, start)
		log.WithFields(logrus.Fields{
			"outcome": OutcomeInvalidUser,
			"reason":  err.Error(),
		}).Warn("authentication rejected")

	default:
		fc.Failure(core.FlowErrorInternalError, nil)
		a.observe(OutcomeInternalError, start)
		log.WithField("outcome", OutcomeInternalError).
			WithError(err).
			Error("authentication failed")
	}
}

// run walks the attempt through verifying, projecting and syncing.
// It returns the last state reached together with the synced user or the fault.
func (a *EzcaretechAuthenticator) run(
	ctx context.Context,
	dir core.Directory,
	realm, username, password string,
) (attemptState, *models.User, error) {
	if username == "" || password == "" {
		return stateStart, nil, fmt.Errorf("%w: missing username or password", ErrCredentialRejected)
	}

	token, err := a.client.AcquireToken(ctx, username, password)
	if err != nil {
		return stateVerifying, nil, err
	}
	if token == "" {
		return stateVerifying, nil, fmt.Errorf("%w: backend refused credentials", ErrCredentialRejected)
	}

	resp, err := a.client.FetchProfile(ctx, token)
	if err != nil {
		return stateVerifying, nil, err
	}

	projected := a.projector.Project(resp, username)
	if projected == nil {
		return stateProjecting, nil, fmt.Errorf("%w: no member matches username", ErrCredentialRejected)
	}

	user, err := a.sync.Apply(ctx, dir, realm, projected)
	if err != nil {
		return stateSyncing, nil, err
	}

	return stateDone, user, nil
}

func (a *EzcaretechAuthenticator) observe(outcome string, start time.Time) {
	if a.recorder == nil {
		return
	}
	a.recorder.RecordAuthAttempt(a.client.Name(), outcome == OutcomeSuccess, time.Since(start))
	a.recorder.RecordLogin(outcome)
}

// Action is a no-op: the step issues no interactive challenge
func (a *EzcaretechAuthenticator) Action(fc core.FlowContext) {
	a.logger.WithField("realm", fc.Realm()).Debug("action invoked on ezcaretech authenticator")
}

func (a *EzcaretechAuthenticator) RequiresUser() bool {
	return false
}

func (a *EzcaretechAuthenticator) ConfiguredFor(
	_ context.Context,
	_ core.Directory,
	_ string,
	_ *models.User,
) bool {
	return true
}

func (a *EzcaretechAuthenticator) SetRequiredActions(
	_ context.Context,
	_ core.Directory,
	_ string,
	_ *models.User,
) {
}

func (a *EzcaretechAuthenticator) Close() error {
	return nil
}

// Ensure EzcaretechFactory implements core.AuthenticatorFactory at compile time
var _ core.AuthenticatorFactory = (*EzcaretechFactory)(nil)

// EzcaretechFactory registers the Ezcaretech step with the flow registry
type EzcaretechFactory struct {
	client    core.BackendClient
	projector *profile.Projector
	sync      *UserSynchroniser
	logger    logrus.FieldLogger
	recorder  core.Recorder
}

func NewEzcaretechFactory(
	client core.BackendClient,
	roles []string,
	logger logrus.FieldLogger,
	recorder core.Recorder,
) *EzcaretechFactory {
	return &EzcaretechFactory{
		client:    client,
		projector: profile.NewProjector(roles),
		sync:      NewUserSynchroniser(logger, recorder),
		logger:    logger,
		recorder:  recorder,
	}
}

func (f *EzcaretechFactory) ID() string                { return EzcaretechProviderID }
func (f *EzcaretechFactory) DisplayType() string       { return EzcaretechDisplayType }
func (f *EzcaretechFactory) HelpText() string          { return EzcaretechHelpText }
func (f *EzcaretechFactory) ReferenceCategory() string { return EzcaretechReferenceCategory }

// Create returns a fresh authenticator for one attempt
func (f *EzcaretechFactory) Create() core.Authenticator {
	return NewEzcaretechAuthenticator(f.client, f.projector, f.sync, f.logger, f.recorder)
}
