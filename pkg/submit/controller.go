// Package submit drives a new story from a filled form to a created record.
//
// The controller is a small state machine:
//
//	Idle -> Validating -> Invalid -> Idle
//	                   -> Submitting -> Submitted (terminal, navigates home)
//	                                 -> Failed (form kept, manual retry allowed)
//
// Validation never touches the network. The mutation is sent once per
// accepted submit with no automatic retry.
package submit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-storyform/pkg/form"
	"github.com/goliatone/go-storyform/pkg/graphql"
)

// DefaultHomeRoute is where a successful submission navigates.
const DefaultHomeRoute = "/"

// State is a controller state.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string) error

// Navigate calls fn(route).
func (fn NavigatorFunc) Navigate(route string) error {
	return fn(route)
}

// Transition is reported to observers on every state change.
type Transition struct {
	From State
	To   State
}

// Result describes an accepted submission.
type Result struct {
	Input     CreateStoryInput
	CreatedAt string
	Route     string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNavigator sets the navigator invoked after a successful submit.
func WithNavigator(nav Navigator) Option {
	return func(c *Controller) {
		if nav != nil {
			c.navigator = nav
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaultStatus overrides the status id sent with new stories.
func WithDefaultStatus(status string) Option {
	return func(c *Controller) {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			c.status = trimmed
		}
	}
}

// WithHomeRoute overrides the route navigated to after success.
func WithHomeRoute(route string) Option {
	return func(c *Controller) {
		if trimmed := strings.TrimSpace(route); trimmed != "" {
			c.homeRoute = trimmed
		}
	}
}

// OnTransition registers an observer for state changes. Observers run
// synchronously on the submitting goroutine.
func OnTransition(fn func(Transition)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// Controller validates a form and sends the create-story mutation.
type Controller struct {
	client    graphql.Doer
	navigator Navigator
	logger    *zap.Logger
	status    string
	homeRoute string
	observers []func(Transition)

	mu      sync.Mutex
	state   State
	lastErr error
}

// New constructs a controller that sends mutations through client.
func New(client graphql.Doer, options ...Option) *Controller {
	c := &Controller{
		client:    client,
		navigator: NavigatorFunc(func(string) error { return nil }),
		logger:    zap.NewNop(),
		status:    DefaultStatus,
		homeRoute: DefaultHomeRoute,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// State reports the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error of the most recent failed submission.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Submit runs one pass of the state machine against the current form
// values. Validation failures return a *ValidationError, mutation failures a
// *SubmissionError; in both cases the form values are left untouched.
func (c *Controller) Submit(ctx context.Context, state *form.State) (Result, error) {
	if state == nil {
		return Result{}, errors.New("submit: form state is nil")
	}
	if err := c.begin(); err != nil {
		return Result{}, err
	}

	violations := state.ValidateOnSubmit()
	values := state.Snapshot()
	if !values.HasDescription() {
		state.SetError(form.FieldDescription, form.ErrorRequired)
		violations = append(violations, form.FieldDescription)
	}
	if len(violations) > 0 {
		c.transition(StateInvalid)
		c.transition(StateIdle)
		c.logger.Debug("story submission invalid", zap.Strings("fields", violations))
		return Result{}, &ValidationError{Fields: violations}
	}

	input := BuildInput(values, c.status)
	c.transition(StateSubmitting)

	var resp createStoryResponse
	if err := c.client.Do(ctx, BuildRequest(input), &resp); err != nil {
		return Result{}, c.fail(err)
	}

	c.transition(StateSubmitted)
	result := Result{
		Input:     input,
		CreatedAt: resp.createdAt(),
		Route:     c.homeRoute,
	}
	c.logger.Info("story created",
		zap.String("title", input.Title),
		zap.String("product", input.Product),
		zap.String("created_at", result.CreatedAt),
	)
	if err := c.navigator.Navigate(c.homeRoute); err != nil {
		return result, fmt.Errorf("submit: navigate %s: %w", c.homeRoute, err)
	}
	return result, nil
}

func (c *Controller) begin() error {
	c.mu.Lock()
	from := c.state
	switch from {
	case StateSubmitting, StateValidating:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case StateSubmitted:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	}
	c.state = StateValidating
	c.mu.Unlock()
	c.notify(Transition{From: from, To: StateValidating})
	return nil
}

func (c *Controller) fail(cause error) error {
	err := &SubmissionError{Err: cause}
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.transition(StateFailed)
	c.logger.Error("story submission failed", zap.Error(cause))
	return err
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()
	c.notify(Transition{From: from, To: to})
}

func (c *Controller) notify(t Transition) {
	for _, fn := range c.observers {
		fn(t)
	}
}
