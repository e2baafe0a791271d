package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dewakar-s/procflow/internal/presentation/tui"
	"github.com/dewakar-s/procflow/pkg/adapters/file"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ProcedurePath string
	SessionID     string
	JSON          bool
	Quiet         bool
	Fresh         bool
	Debug         bool
}

// RunSession drives one procedure over a console channel until it finishes or
// input ends. An interrupted session stays suspended and exits cleanly.
func RunSession(ctx context.Context, app *App, opts RunOptions, in io.Reader, out io.Writer) error {
	proc, err := file.LoadProcedure(opts.ProcedurePath)
	if err != nil {
		return err
	}

	quiet := opts.Quiet || opts.JSON
	if !quiet {
		tui.PrintBanner(out)
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := app.Controller.Delete(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		app.Logger.Info("Session reset", "session_id", opts.SessionID)
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(in, out)
	} else {
		handler = runner.NewTextHandler(in, out, runner.WithTextHandlerRenderer(runner.AutoRenderer(out)))
	}

	r := runner.New(app.Controller,
		runner.WithHandler(handler),
		runner.WithLogger(app.Logger),
	)

	sm := runner.NewSignalManager(ctx)
	defer sm.Stop()

	res, runErr := r.Run(sm.Context(), opts.SessionID, proc)
	if sm.Interrupted() && runErr == nil {
		runErr = context.Canceled
	}

	logCompletion(out, res, runErr, quiet)
	return handleExecutionError(runErr)
}
