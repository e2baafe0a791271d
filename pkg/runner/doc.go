/*
Package runner drives a session interactively over a pair of streams.

It is the console host of the suspension controller: it starts a procedure,
shows each pending question through an IOHandler, reads the answer and resumes,
until the procedure produces its final response.

# Handlers

  - TextHandler: line-oriented terminal I/O, with optional markdown rendering.
  - JSONHandler: JSON Lines for headless hosts; replies may carry a resume token.

# Usage

	r := runner.New(controller,
		runner.WithHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithLogger(logger),
	)
	out, err := r.Run(ctx, "user-1", proc)

Interrupting a run leaves the session suspended in the store; running again with
the same session ID picks up at the pending question.
*/
package runner
