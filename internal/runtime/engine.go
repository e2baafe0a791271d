package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/ports"
)

// Engine performs single transitions of a procedure.
// It holds no per-session data; everything lives in the State passed in.
type Engine struct {
	resolver     ports.ActionResolver
	composer     ports.Composer
	interpolator Interpolator
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithComposer sets the component that authors final responses.
func WithComposer(c ports.Composer) EngineOption {
	return func(e *Engine) {
		e.composer = c
	}
}

// WithInterpolator replaces the text/template message renderer.
func WithInterpolator(i Interpolator) EngineOption {
	return func(e *Engine) {
		e.interpolator = i
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(h domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a driver resolving API_CALL steps through resolver.
func NewEngine(resolver ports.ActionResolver, opts ...EngineOption) *Engine {
	e := &Engine{
		resolver:     resolver,
		interpolator: DefaultInterpolator,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Step performs the transition for the step under the cursor and returns the new
// snapshot and the node that ran. The input state is never mutated.
// A suspended or finished state is returned unchanged.
func (e *Engine) Step(ctx context.Context, in *domain.State) (*domain.State, Node, error) {
	s := in.Clone()

	switch s.Status {
	case domain.StatusSuspended:
		return s, NodeAwaitingInput, nil
	case domain.StatusDone:
		return s, NodeFinalized, nil
	case domain.StatusTerminated:
		return s, NodeTerminated, nil
	}

	node := Route(s.StepIndex, s.Steps)
	switch node {
	case NodeAwaitingInput:
		e.awaitInput(ctx, s)
	case NodeInvokingAction:
		e.invokeAction(ctx, s)
	case NodeFinalized:
		e.finalize(ctx, s)
	default:
		e.terminate(ctx, s)
	}
	return s, node, nil
}

// Answer resolves the pending ASK_USER step with answer and advances the cursor by one.
func (e *Engine) Answer(ctx context.Context, in *domain.State, answer string) (*domain.State, error) {
	if in.Status != domain.StatusSuspended {
		return nil, domain.ErrSessionNotSuspended
	}
	step, ok := in.CurrentStep()
	if !ok || step.Type != domain.StepAskUser {
		return nil, fmt.Errorf("snapshot of session %q is suspended outside an ASK_USER step: %w", in.SessionID, domain.ErrSessionNotSuspended)
	}

	s := in.Clone()
	s.LastUserInput = &answer
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[domain.AnswerKey(step, s.StepIndex)] = answer
	s.PendingQuestion = ""
	s.Status = domain.StatusRunning

	index := s.StepIndex
	s.Advance()
	e.emitStep(ctx, e.hooks.OnStepLeave, domain.EventStepLeave, s, index, step.Type, NodeAwaitingInput, nil)
	return s, nil
}

func (e *Engine) awaitInput(ctx context.Context, s *domain.State) {
	step, _ := s.CurrentStep()
	e.emitStep(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, s, s.StepIndex, step.Type, NodeAwaitingInput, nil)

	question := e.render(ctx, step.Message, s)
	s.Status = domain.StatusSuspended
	s.PendingQuestion = question
	s.UpdatedAt = time.Now().UTC()

	e.logger.Debug("Suspending for input", "session_id", s.SessionID, "step", s.StepIndex)
	e.emitStep(ctx, e.hooks.OnSuspend, domain.EventSuspend, s, s.StepIndex, step.Type, NodeAwaitingInput, nil)
}

func (e *Engine) invokeAction(ctx context.Context, s *domain.State) {
	index := s.StepIndex
	step, _ := s.CurrentStep()
	e.emitStep(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, s, index, step.Type, NodeInvokingAction, nil)

	args, bindings := bindParameters(step.Parameters, s)
	for _, b := range bindings {
		if b.Fallback {
			e.logger.Info("Unrecognized parameter token bound to last user input",
				"session_id", s.SessionID,
				"step", index,
				"param", b.Param,
				"token", b.Token,
			)
		}
	}

	if e.hooks.OnActionCall != nil {
		e.hooks.OnActionCall(ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventActionCall, SessionID: s.SessionID},
			StepIndex: index,
			Action:    step.Action,
			Input:     args,
		})
	}

	start := time.Now()
	var result domain.ActionResult
	inv, ok := e.lookup(step.Action)
	if !ok {
		e.logger.Warn("Action not found", "session_id", s.SessionID, "step", index, "action", step.Action)
		result = domain.Failed(fmt.Sprintf("action not found: %s", step.Action))
	} else {
		callCtx := action.WithIdempotencyKey(ctx, action.IdempotencyKey(s.SessionID, index, step.Action))
		result = inv.Invoke(callCtx, args)
	}

	if e.hooks.OnActionReturn != nil {
		e.hooks.OnActionReturn(ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventActionReturn, SessionID: s.SessionID},
			StepIndex: index,
			Action:    step.Action,
			Input:     args,
			Result:    &result,
			Duration:  time.Since(start),
		})
	}

	s.LastActionOutput = &result
	s.Advance()
	e.emitStep(ctx, e.hooks.OnStepLeave, domain.EventStepLeave, s, index, step.Type, NodeInvokingAction, nil)
}

func (e *Engine) lookup(name string) (ports.Invoker, bool) {
	if e.resolver == nil {
		return nil, false
	}
	return e.resolver.Resolve(name)
}

func (e *Engine) finalize(ctx context.Context, s *domain.State) {
	index := s.StepIndex
	step, _ := s.CurrentStep()
	e.emitStep(ctx, e.hooks.OnStepEnter, domain.EventStepEnter, s, index, step.Type, NodeFinalized, nil)

	response := e.render(ctx, step.Message, s)
	if e.composer != nil {
		composed, err := e.composer.Compose(ctx, s, response)
		if err != nil {
			e.logger.Warn("Composer failed, using configured message", "session_id", s.SessionID, "err", err)
		} else if composed != "" {
			response = composed
		}
	}

	s.FinalResponse = &response
	s.Status = domain.StatusDone
	s.Advance()
	e.emitStep(ctx, e.hooks.OnStepLeave, domain.EventStepLeave, s, index, step.Type, NodeFinalized, nil)
}

func (e *Engine) terminate(ctx context.Context, s *domain.State) {
	s.Status = domain.StatusTerminated
	s.PendingQuestion = ""
	s.UpdatedAt = time.Now().UTC()

	step, ok := s.CurrentStep()
	if !ok {
		e.emitStep(ctx, e.hooks.OnTerminate, domain.EventTerminate, s, s.StepIndex, "", NodeTerminated, nil)
		return
	}

	rerr := &domain.RoutingError{Index: s.StepIndex, Type: step.Type}
	e.logger.Warn("Procedure terminated on an unrecognized step type",
		"session_id", s.SessionID,
		"step", s.StepIndex,
		"type", step.Type,
	)
	e.emitStep(ctx, e.hooks.OnTerminate, domain.EventTerminate, s, s.StepIndex, step.Type, NodeTerminated, rerr)
}

func (e *Engine) render(ctx context.Context, text string, s *domain.State) string {
	if e.interpolator == nil {
		return text
	}
	out, err := e.interpolator(ctx, text, templateData(s))
	if err != nil {
		e.logger.Warn("Message interpolation failed, using raw text", "session_id", s.SessionID, "err", err)
		return text
	}
	return out
}

func (e *Engine) emitStep(ctx context.Context, fn func(context.Context, *domain.StepEvent), typ domain.EventType, s *domain.State, index int, stepType domain.StepType, node Node, err error) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.StepEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, SessionID: s.SessionID},
		StepIndex: index,
		StepType:  stepType,
		Node:      string(node),
		Err:       err,
	})
}
