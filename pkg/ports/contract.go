package ports

import (
	"context"
	"testing"
	"time"

	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractProcedure() domain.Procedure {
	return domain.Procedure{Steps: []domain.Step{
		{Type: domain.StepAskUser, Action: "ask_email", Message: "Email?"},
		{Type: domain.StepAPICall, Action: "fetch_orders", Parameters: map[string]any{"email_id": "<ask_email>"}},
		{Type: domain.StepRespondFinal, Message: "Done"},
	}}
}

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID, contractProcedure())
		answer := "user@example.com"
		state.LastUserInput = &answer
		state.Answers["ask_email"] = answer
		state.Status = domain.StatusSuspended
		state.PendingQuestion = "Select order"
		state.LastActionOutput = &domain.ActionResult{Status: domain.ActionSuccess, Message: "ok", Data: map[string]any{"count": 2}}
		state.Advance()
		state.RememberToken("tok-1")

		require.NoError(t, store.Save(ctx, sessionID, state), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.StepIndex, loaded.StepIndex)
		assert.Equal(t, state.Steps, loaded.Steps)
		assert.Equal(t, state.Fingerprint, loaded.Fingerprint)
		assert.Equal(t, domain.StatusSuspended, loaded.Status)
		assert.Equal(t, "Select order", loaded.PendingQuestion)
		require.NotNil(t, loaded.LastUserInput)
		assert.Equal(t, answer, *loaded.LastUserInput)
		assert.Equal(t, answer, loaded.Answers["ask_email"])
		assert.True(t, loaded.HasToken("tok-1"))
		require.NotNil(t, loaded.LastActionOutput)
		// JSON persistence turns numbers into float64; only existence is checked.
		assert.NotNil(t, loaded.LastActionOutput.Data)
	})

	t.Run("Load returns an independent copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.StepIndex = 99
		loaded.Answers["ask_email"] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotEqual(t, 99, again.StepIndex)
		assert.NotEqual(t, "mutated", again.Answers["ask_email"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewState(sessionID, contractProcedure())))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewState(id1, contractProcedure())))
		require.NoError(t, store.Save(ctx, id2, domain.NewState(id2, contractProcedure())))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunActionSourceContract verifies an ActionSource. put seeds one descriptor into
// an action set and is called before any listing.
func RunActionSourceContract(t *testing.T, src ActionSource, put func(t *testing.T, actionSetID string, desc domain.ActionDescriptor)) {
	ctx := context.Background()

	fetch := domain.ActionDescriptor{
		Name:        "fetch_orders",
		Description: "List the orders of a customer",
		HTTPMethod:  "GET",
		URL:         "https://shop.example.com/orders",
		Headers:     []domain.Header{{Key: "X-Api-Key", Value: "secret"}},
		Parameters:  []domain.ParameterSpec{{Name: "email_id", Type: "str"}},
	}
	cancel := domain.ActionDescriptor{
		Name:        "cancel_order",
		Description: "Cancel one order",
		HTTPMethod:  "POST",
		URL:         "https://shop.example.com/orders/{order_id}/cancel",
		Parameters:  []domain.ParameterSpec{{Name: "order_id", Type: "integer"}},
	}
	other := domain.ActionDescriptor{Name: "ping", HTTPMethod: "GET", URL: "https://status.example.com/ping"}

	put(t, "shop", fetch)
	put(t, "shop", cancel)
	put(t, "status", other)

	t.Run("Lists one set", func(t *testing.T) {
		got, err := src.ListActions(ctx, "shop")
		require.NoError(t, err)
		require.Len(t, got, 2)

		byName := make(map[string]domain.ActionDescriptor, len(got))
		for _, d := range got {
			byName[d.Name] = d
		}
		require.Contains(t, byName, "fetch_orders")
		require.Contains(t, byName, "cancel_order")

		f := byName["fetch_orders"]
		assert.Equal(t, fetch.Description, f.Description)
		assert.Equal(t, fetch.HTTPMethod, f.HTTPMethod)
		assert.Equal(t, fetch.URL, f.URL)
		assert.Equal(t, fetch.Headers, f.Headers)
		assert.Equal(t, fetch.Parameters, f.Parameters)
		assert.Equal(t, cancel.URL, byName["cancel_order"].URL)
		assert.Equal(t, cancel.Parameters, byName["cancel_order"].Parameters)
	})

	t.Run("Sets are isolated", func(t *testing.T) {
		got, err := src.ListActions(ctx, "status")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ping", got[0].Name)
	})

	t.Run("Unknown set is empty", func(t *testing.T) {
		got, err := src.ListActions(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
