/*
Package procflow drives interruptible, multi-turn procedures.

A procedure is an ordered list of steps. ASK_USER steps pause the session until
the host supplies an answer, API_CALL steps invoke an HTTP action compiled from
a declarative descriptor, and RESPOND_FINAL closes the session with a message.
Between turns the whole session lives in a serializable snapshot, so a process
may stop after any pause and another one may resume it from the store.

# Usage

	eng, err := procflow.New(ctx,
		procflow.WithActions(domain.ActionDescriptor{
			Name:       "cancel_order",
			HTTPMethod: "POST",
			URL:        "https://shop.example/orders/{order_id}/cancel",
			Parameters: []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.Start(ctx, "chat-42", proc)
	for err == nil && out.Status == domain.OutcomePaused {
		out, err = eng.Resume(ctx, out.SessionID, ask(out.Question))
	}

Hosts that serve many users keep snapshots in a shared store (see
pkg/adapters/file, pkg/adapters/redis and pkg/adapters/sqlite) and expose the
controller over HTTP, MCP or Telegram (pkg/adapters).
*/
package procflow
