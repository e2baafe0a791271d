package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dewakar-s/procflow/internal/config"
	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
)

// CreateLogger configures the application logger from cfg.
// Debug forces the debug level regardless of log.level.
func CreateLogger(w io.Writer, cfg config.LogConfig, debug bool) *slog.Logger {
	level := logging.ParseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(w, level, cfg.Format)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Enter Step", "index", e.StepIndex, "type", e.StepType, "node", e.Node)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Leave Step", "index", e.StepIndex)
		},
		OnActionCall: func(ctx context.Context, e *domain.ActionEvent) {
			logger.Debug("Action Call", "action", e.Action, "input", e.Input)
		},
		OnActionReturn: func(ctx context.Context, e *domain.ActionEvent) {
			if e.Result != nil && e.Result.Status == domain.ActionFailed {
				logger.Debug("Action Return (Failed)", "action", e.Action, "err", e.Result.Message)
			} else {
				logger.Debug("Action Return (Success)", "action", e.Action)
			}
		},
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, runner.ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit; the session stays resumable.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, out domain.Outcome, err error, quiet bool) {
	if quiet {
		return
	}
	switch {
	case err == nil && out.Status == domain.OutcomeDone:
		printSystemMessage(w, "Finished at step %d.", out.StepIndex)
	case isInterrupted(err):
		printSystemMessage(w, "Interrupted at step %d. Session '%s' can be resumed.", out.StepIndex, out.SessionID)
	}
}
