package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dewakar-s/procflow/pkg/adapters/sqlite"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "procflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, openDB(t))
}

func TestSQLiteActions_Contract(t *testing.T) {
	db := openDB(t)
	ports.RunActionSourceContract(t, db, func(t *testing.T, set string, d domain.ActionDescriptor) {
		require.NoError(t, db.PutAction(context.Background(), set, d))
	})
}

func TestSQLiteActions(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	desc := domain.ActionDescriptor{
		Name:       "fetch_orders",
		HTTPMethod: "GET",
		URL:        "https://api.example.com/orders/{email_id}",
		Headers:    []domain.Header{{Key: "X-Api-Key", Value: "secret"}},
		Parameters: []domain.ParameterSpec{{Name: "email_id", Type: "str"}},
	}
	require.NoError(t, db.PutAction(ctx, "orders", desc))

	desc.Description = "updated"
	require.NoError(t, db.PutAction(ctx, "orders", desc))

	got, err := db.ListActions(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "updated", got[0].Description)
	assert.Equal(t, desc.Headers, got[0].Headers)
	assert.Equal(t, desc.Parameters, got[0].Parameters)

	other, err := db.ListActions(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, other)

	err = db.PutAction(ctx, "orders", domain.ActionDescriptor{Name: "no_url"})
	assert.Error(t, err)
}
