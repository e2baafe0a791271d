package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventActionCall   EventType = "action_call"
	EventActionReturn EventType = "action_return"
	EventSuspend      EventType = "suspend"
	EventTerminate    EventType = "terminate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into, exit from, or suspension at a step.
type StepEvent struct {
	EventBase
	StepIndex int      `json:"step_index"`
	StepType  StepType `json:"step_type"`
	Node      string   `json:"node"`
	Err       error    `json:"-"`
}

// ActionEvent represents an action invocation.
type ActionEvent struct {
	EventBase
	StepIndex int            `json:"step_index"`
	Action    string         `json:"action"`
	Input     map[string]any `json:"input,omitempty"`
	Result    *ActionResult  `json:"result,omitempty"`
	Duration  time.Duration  `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepLeave    func(context.Context, *StepEvent)
	OnActionCall   func(context.Context, *ActionEvent)
	OnActionReturn func(context.Context, *ActionEvent)
	OnSuspend      func(context.Context, *StepEvent)
	OnTerminate    func(context.Context, *StepEvent)
}

// Merge combines two hook sets, calling a before b.
func (a LifecycleHooks) Merge(b LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:    chainStep(a.OnStepEnter, b.OnStepEnter),
		OnStepLeave:    chainStep(a.OnStepLeave, b.OnStepLeave),
		OnActionCall:   chainAction(a.OnActionCall, b.OnActionCall),
		OnActionReturn: chainAction(a.OnActionReturn, b.OnActionReturn),
		OnSuspend:      chainStep(a.OnSuspend, b.OnSuspend),
		OnTerminate:    chainStep(a.OnTerminate, b.OnTerminate),
	}
}

func chainStep(a, b func(context.Context, *StepEvent)) func(context.Context, *StepEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *StepEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainAction(a, b func(context.Context, *ActionEvent)) func(context.Context, *ActionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *ActionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
