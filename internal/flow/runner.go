package flow

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/devfury/ezcaretech-auth/internal/core"
)

var (
	ErrDuplicateProvider = errors.New("authenticator already registered")
	ErrUnknownProvider   = errors.New("unknown authenticator")
	ErrUserRequired      = errors.New("authenticator requires an identified user")
)

// Runner executes registered steps against the user directory
type Runner struct {
	registry *Registry
	dir      core.Directory
	logger   logrus.FieldLogger
}

func NewRunner(registry *Registry, dir core.Directory, logger logrus.FieldLogger) *Runner {
	return &Runner{
		registry: registry,
		dir:      dir,
		logger:   logger,
	}
}

// Run creates a fresh instance of the step named providerID and runs one attempt.
// An error is returned only when the step cannot be run at all.
func (r *Runner) Run(
	ctx context.Context,
	providerID, realm string,
	form url.Values,
) (Outcome, error) {
	factory, ok := r.registry.Get(providerID)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}

	step := factory.Create()
	defer func() {
		if err := step.Close(); err != nil {
			r.logger.WithError(err).WithField("provider", providerID).Warn("failed to close authenticator")
		}
	}()

	fc := NewContext(ctx, realm, form, r.dir)
	if step.RequiresUser() && fc.User() == nil {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUserRequired, providerID)
	}

	step.Authenticate(fc)

	out := fc.Outcome()
	if out.Succeeded() && out.User != nil {
		if step.ConfiguredFor(ctx, r.dir, realm, out.User) {
			step.SetRequiredActions(ctx, r.dir, realm, out.User)
		}
	}
	return out, nil
}
