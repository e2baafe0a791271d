package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// DefaultWatchInterval is how often WatchSession polls the store.
const DefaultWatchInterval = 500 * time.Millisecond

// WatchSession follows a session driven by another process (HTTP, MCP, Telegram)
// and prints a line whenever its cursor or status changes. It returns when the
// session finishes, is deleted, or ctx is cancelled.
func WatchSession(ctx context.Context, app *App, sessionID string, interval time.Duration, w io.Writer) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	seen := false
	for {
		state, err := app.Controller.Get(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			if seen {
				printSystemMessage(w, "Session '%s' was removed.", sessionID)
				return nil
			}
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to load session %q: %w", sessionID, err)
		}
		seen = true

		if line := describe(state); line != last {
			fmt.Fprintln(w, line)
			last = line
			app.Logger.Debug("Session changed", "session_id", sessionID, "step_index", state.StepIndex, "status", state.Status)
		}
		if state.Status == domain.StatusDone || state.Status == domain.StatusTerminated {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
