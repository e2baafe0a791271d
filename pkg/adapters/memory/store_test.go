package memory_test

import (
	"context"
	"testing"

	"github.com/dewakar-s/procflow/pkg/adapters/memory"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestActionSource_Contract(t *testing.T) {
	src := memory.NewActionSource(nil)
	ports.RunActionSourceContract(t, src, func(_ *testing.T, set string, d domain.ActionDescriptor) {
		src.Put(set, d)
	})
}

func TestActionSource(t *testing.T) {
	src := memory.NewActionSource(map[string][]domain.ActionDescriptor{
		"t1": {{Name: "a", URL: "http://x"}},
	})
	src.Put("t1", domain.ActionDescriptor{Name: "b", URL: "http://y"})

	got, err := src.ListActions(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got[0].Name = "mutated"
	again, _ := src.ListActions(context.Background(), "t1")
	assert.Equal(t, "a", again[0].Name)

	empty, err := src.ListActions(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
