package observability

import (
	"context"
	"log/slog"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	step := func(msg string, level slog.Level) func(context.Context, *domain.StepEvent) {
		return func(ctx context.Context, e *domain.StepEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"step_index", e.StepIndex,
				"step_type", e.StepType,
				"node", e.Node,
			}
			if e.Err != nil {
				attrs = append(attrs, "error", e.Err)
			}
			logger.Log(ctx, level, msg, attrs...)
		}
	}

	return domain.LifecycleHooks{
		OnStepEnter: step("step enter", slog.LevelDebug),
		OnStepLeave: step("step leave", slog.LevelDebug),
		OnSuspend:   step("session suspended", slog.LevelInfo),
		OnTerminate: step("session terminated", slog.LevelWarn),
		OnActionCall: func(ctx context.Context, e *domain.ActionEvent) {
			logger.DebugContext(ctx, "action call",
				"session_id", e.SessionID,
				"action", e.Action,
				"step_index", e.StepIndex)
		},
		OnActionReturn: func(ctx context.Context, e *domain.ActionEvent) {
			status := domain.ActionFailed
			if e.Result != nil {
				status = e.Result.Status
			}
			logger.InfoContext(ctx, "action returned",
				"session_id", e.SessionID,
				"action", e.Action,
				"status", status,
				"duration", e.Duration)
		},
	}
}
