package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/session"
)

// ErrInterrupted is returned when input ends before the procedure completes.
// The session stays suspended and can be resumed later.
var ErrInterrupted = errors.New("interrupted while awaiting input")

// Sessions is the subset of the controller the runner needs.
type Sessions interface {
	Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error)
	Resume(ctx context.Context, sessionID string, req session.ResumeRequest) (domain.Outcome, error)
}

// Runner loops ask/answer/resume over an IOHandler.
type Runner struct {
	Sessions Sessions
	Handler  IOHandler
	Logger   *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithHandler sets the IOHandler (TextHandler over stdio by default).
func WithHandler(h IOHandler) Option {
	return func(r *Runner) {
		r.Handler = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// New creates a Runner.
func New(sessions Sessions, opts ...Option) *Runner {
	r := &Runner{
		Sessions: sessions,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run starts (or re-attaches to) sessionID and drives it to completion.
func (r *Runner) Run(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error) {
	out, err := r.Sessions.Start(ctx, sessionID, proc)
	if err != nil {
		return out, err
	}
	r.Logger.Debug("session started", "session_id", out.SessionID, "status", out.Status)

	for out.Status == domain.OutcomePaused {
		if err := r.Handler.Output(ctx, Prompt{
			Kind:      PromptQuestion,
			SessionID: out.SessionID,
			StepIndex: out.StepIndex,
			Text:      out.Question,
		}); err != nil {
			return out, fmt.Errorf("output error: %w", err)
		}

		req, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				_ = r.Handler.SystemOutput(context.WithoutCancel(ctx),
					fmt.Sprintf("Paused. Resume session %s to continue.", out.SessionID))
				return out, ErrInterrupted
			}
			return out, fmt.Errorf("input error: %w", err)
		}

		next, err := r.Sessions.Resume(ctx, out.SessionID, req)
		if err != nil {
			return out, err
		}
		out = next
	}

	if out.FinalResponse == "" {
		return out, r.Handler.SystemOutput(ctx, "Session ended without a final response.")
	}
	if err := r.Handler.Output(ctx, Prompt{
		Kind:      PromptFinal,
		SessionID: out.SessionID,
		StepIndex: out.StepIndex,
		Text:      out.FinalResponse,
	}); err != nil {
		return out, fmt.Errorf("output error: %w", err)
	}
	return out, nil
}
