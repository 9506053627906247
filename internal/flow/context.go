package flow

import (
	"context"
	"net/url"
	"sync"

	"github.com/devfury/ezcaretech-auth/internal/core"
	"github.com/devfury/ezcaretech-auth/internal/models"
)

// Status is the result of one step
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Outcome is what a step reported on its flow context
type Outcome struct {
	Status   Status
	Error    core.FlowError
	Response *core.ChallengeResponse
	User     *models.User
}

// Succeeded reports whether the step signalled success
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// Ensure Context implements core.FlowContext at compile time
var _ core.FlowContext = (*Context)(nil)

// Context is the concrete flow context of one login attempt.
// The first Success or Failure wins; later signals are ignored.
type Context struct {
	ctx   context.Context
	realm string
	form  url.Values
	dir   core.Directory

	mu      sync.Mutex
	user    *models.User
	outcome Outcome
}

func NewContext(ctx context.Context, realm string, form url.Values, dir core.Directory) *Context {
	if form == nil {
		form = url.Values{}
	}
	return &Context{
		ctx:     ctx,
		realm:   realm,
		form:    form,
		dir:     dir,
		outcome: Outcome{Status: StatusPending},
	}
}

func (c *Context) Context() context.Context  { return c.ctx }
func (c *Context) Realm() string             { return c.realm }
func (c *Context) Form() url.Values          { return c.form }
func (c *Context) Directory() core.Directory { return c.dir }

func (c *Context) SetUser(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
}

func (c *Context) User() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Context) Success() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome.Status != StatusPending {
		return
	}
	c.outcome = Outcome{Status: StatusSuccess}
}

func (c *Context) Failure(err core.FlowError, response *core.ChallengeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome.Status != StatusPending {
		return
	}
	c.outcome = Outcome{Status: StatusFailure, Error: err, Response: response}
}

// Outcome returns what the step reported. A step that reported nothing yields an internal error.
func (c *Context) Outcome() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.outcome
	switch out.Status {
	case StatusPending:
		return Outcome{Status: StatusFailure, Error: core.FlowErrorInternalError}
	case StatusSuccess:
		out.User = c.user
	}
	return out
}
