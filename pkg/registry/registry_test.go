package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource map[string][]domain.ActionDescriptor

func (s stubSource) ListActions(_ context.Context, setID string) ([]domain.ActionDescriptor, error) {
	if setID == "broken" {
		return nil, errors.New("db down")
	}
	return s[setID], nil
}

func TestLoad(t *testing.T) {
	src := stubSource{
		"tenant-1": {
			{Name: "fetch orders", HTTPMethod: "GET", URL: "http://x/orders"},
			{Name: "cancel_order", HTTPMethod: "POST", URL: "http://x/orders/{order_id}"},
		},
		"bad": {{Name: "no-url"}},
	}
	compiler := action.NewCompiler()
	ctx := context.Background()

	t.Run("compiles every descriptor", func(t *testing.T) {
		reg, err := registry.Load(ctx, src, "tenant-1", compiler, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, reg.Len())

		names := []string{}
		for _, inv := range reg.List() {
			names = append(names, inv.Name())
		}
		assert.Equal(t, []string{"cancel_order", "fetch_orders"}, names)

		_, ok := reg.Resolve("fetch orders")
		assert.True(t, ok, "raw names resolve through sanitization")
		_, ok = reg.Resolve("missing")
		assert.False(t, ok)
	})

	t.Run("empty set is not an error", func(t *testing.T) {
		reg, err := registry.Load(ctx, src, "nobody", compiler, nil)
		require.NoError(t, err)
		assert.Zero(t, reg.Len())
	})

	t.Run("malformed descriptor aborts", func(t *testing.T) {
		_, err := registry.Load(ctx, src, "bad", compiler, nil)
		var cfgErr *domain.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("source failure is wrapped", func(t *testing.T) {
		_, err := registry.Load(ctx, src, "broken", compiler, nil)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestExecute_UnknownAction(t *testing.T) {
	reg := registry.NewRegistry()
	res := reg.Execute(context.Background(), "nope", nil)
	assert.Equal(t, domain.ActionFailed, res.Status)
	assert.Equal(t, "action not found: nope", res.Message)
}
