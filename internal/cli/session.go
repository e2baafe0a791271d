package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
)

// ListSessions prints one row per stored session.
func ListSessions(ctx context.Context, app *App, w io.Writer) error {
	ids, err := app.Controller.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSTATUS\tSTEP\tUPDATED")
	for _, id := range ids {
		state, err := app.Controller.Get(ctx, id)
		if err != nil {
			fmt.Fprintf(tw, "%s\t?\t?\t%v\n", id, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", id, state.Status, state.StepIndex, len(state.Steps), state.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// InspectSession prints the snapshot of one session as indented JSON.
func InspectSession(ctx context.Context, app *App, sessionID string, w io.Writer) error {
	state, err := app.Controller.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(state)
}

// RemoveSession deletes the snapshot of sessionID.
func RemoveSession(ctx context.Context, app *App, sessionID string, w io.Writer) error {
	if _, err := app.Controller.Get(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	if err := app.Controller.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", sessionID, err)
	}
	printSystemMessage(w, "Session '%s' removed.", sessionID)
	return nil
}

func describe(state *domain.State) string {
	switch state.Status {
	case domain.StatusSuspended:
		return fmt.Sprintf("step %d: waiting for input: %q", state.StepIndex, state.PendingQuestion)
	case domain.StatusDone:
		if state.FinalResponse != nil {
			return fmt.Sprintf("completed: %q", *state.FinalResponse)
		}
		return "completed"
	default:
		return fmt.Sprintf("step %d: %s", state.StepIndex, state.Status)
	}
}
