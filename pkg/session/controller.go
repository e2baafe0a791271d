package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/internal/runtime"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/google/uuid"
)

// Driver performs single transitions of a snapshot.
type Driver interface {
	Step(ctx context.Context, s *domain.State) (*domain.State, runtime.Node, error)
	Answer(ctx context.Context, s *domain.State, answer string) (*domain.State, error)
}

// ResumeRequest carries the answer for a suspended session.
// Token, when set, makes the request safe to re-deliver.
type ResumeRequest struct {
	Answer string `json:"answer"`
	Token  string `json:"token,omitempty"`
}

// Controller implements start and resume over a Manager and a Driver.
type Controller struct {
	manager   *Manager
	driver    Driver
	logger    *slog.Logger
	newID     func() string
	listeners []func(context.Context, domain.Outcome)
}

// ControllerOption configures the Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the Controller's logger.
func WithControllerLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithIDGenerator replaces the UUID generator used when Start receives no session ID.
func WithIDGenerator(fn func() string) ControllerOption {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithOutcomeListener registers a callback invoked after every successful Start or Resume.
func WithOutcomeListener(fn func(context.Context, domain.Outcome)) ControllerOption {
	return func(c *Controller) {
		c.listeners = append(c.listeners, fn)
	}
}

// NewController creates a Controller.
func NewController(manager *Manager, driver Driver, opts ...ControllerOption) *Controller {
	c := &Controller{
		manager: manager,
		driver:  driver,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start initializes a session and drives it until it pauses or finishes.
// Starting an existing session with the same procedure returns its current outcome
// (and drives it on if a previous run stopped between steps). A different procedure
// yields domain.ErrSessionExists.
func (c *Controller) Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error) {
	if err := proc.Validate(); err != nil {
		return domain.Outcome{}, err
	}
	if sessionID == "" {
		sessionID = c.newID()
	}

	var out domain.Outcome
	err := c.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := c.manager.Store()

		state, err := store.Load(ctx, sessionID)
		switch {
		case err == nil:
			if state.Fingerprint != proc.Fingerprint() {
				return fmt.Errorf("session %q: %w", sessionID, domain.ErrSessionExists)
			}
			c.logger.Debug("Start on existing session", "session_id", sessionID, "status", state.Status)
		case errors.Is(err, domain.ErrSessionNotFound):
			state = domain.NewState(sessionID, proc)
			if err := store.Save(ctx, sessionID, state); err != nil {
				return fmt.Errorf("failed to initialize session: %w", err)
			}
			c.logger.Info("Session started", "session_id", sessionID, "steps", len(proc.Steps))
		default:
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		state, err = c.drive(ctx, state)
		if err != nil {
			return err
		}
		out = domain.OutcomeOf(state)
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	c.notify(ctx, out)
	return out, nil
}

// Resume answers the pending question of a suspended session and drives it on.
// Unknown and non-suspended sessions are rejected with a *domain.SuspensionProtocolError.
// A request whose token was already applied does not apply its answer again; it returns
// the current outcome, first driving on a session left between steps by a failed run.
func (c *Controller) Resume(ctx context.Context, sessionID string, req ResumeRequest) (domain.Outcome, error) {
	var out domain.Outcome
	err := c.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		store := c.manager.Store()

		state, err := store.Load(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				return &domain.SuspensionProtocolError{SessionID: sessionID, Err: domain.ErrSessionNotFound}
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		if state.HasToken(req.Token) {
			c.logger.Info("Resume token already applied", "session_id", sessionID, "token", req.Token)
			if state.Status == domain.StatusRunning {
				// The answer was saved but the run after it did not complete.
				if state, err = c.drive(ctx, state); err != nil {
					return err
				}
			}
			out = domain.OutcomeOf(state)
			out.Replayed = true
			return nil
		}

		if state.Status != domain.StatusSuspended {
			return &domain.SuspensionProtocolError{SessionID: sessionID, Err: domain.ErrSessionNotSuspended}
		}

		state, err = c.driver.Answer(ctx, state, req.Answer)
		if err != nil {
			return &domain.SuspensionProtocolError{SessionID: sessionID, Err: err}
		}
		state.RememberToken(req.Token)
		if err := store.Save(ctx, sessionID, state); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		state, err = c.drive(ctx, state)
		if err != nil {
			return err
		}
		out = domain.OutcomeOf(state)
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	c.notify(ctx, out)
	return out, nil
}

// drive steps the snapshot until it suspends or finishes, saving after every step.
// The caller holds the session lock.
func (c *Controller) drive(ctx context.Context, state *domain.State) (*domain.State, error) {
	store := c.manager.Store()
	// One transition per step plus the terminating one is the most a run can take.
	limit := len(state.Steps) + 1

	for i := 0; i <= limit; i++ {
		if state.Status == domain.StatusSuspended || state.Finished() {
			return state, nil
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		next, node, err := c.driver.Step(ctx, state)
		if err != nil {
			return state, fmt.Errorf("step %d failed: %w", state.StepIndex, err)
		}
		if err := store.Save(ctx, next.SessionID, next); err != nil {
			return state, fmt.Errorf("failed to save session: %w", err)
		}
		c.logger.Debug("Step completed", "session_id", next.SessionID, "node", node, "step_index", next.StepIndex)
		state = next

		if node == runtime.NodeAwaitingInput || node.Terminal() {
			return state, nil
		}
	}
	return state, fmt.Errorf("session %q did not settle after %d steps", state.SessionID, limit)
}

func (c *Controller) notify(ctx context.Context, out domain.Outcome) {
	for _, fn := range c.listeners {
		fn(ctx, out)
	}
}

// Get returns the current snapshot of a session.
func (c *Controller) Get(ctx context.Context, sessionID string) (*domain.State, error) {
	return c.manager.Load(ctx, sessionID)
}

// Delete removes a session.
func (c *Controller) Delete(ctx context.Context, sessionID string) error {
	return c.manager.Delete(ctx, sessionID)
}

// List returns the IDs of all stored sessions.
func (c *Controller) List(ctx context.Context) ([]string, error) {
	return c.manager.List(ctx)
}
