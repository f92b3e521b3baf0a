// Package testutil builds throwaway stores for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/anonto42/daoplus/backend/pkg/retry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// SQLiteDSN names a private in-memory database with foreign keys on.
func SQLiteDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
}

// NewStore returns a migrated gorm Store over a fresh in-memory sqlite
// database that is closed when the test ends.
func NewStore(t testing.TB) *repositories.PostgresStore {
	t.Helper()

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, SQLiteDSN(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.CloseGorm(db) })

	store := repositories.NewPostgresStore(db, retry.Policy{Attempts: 1})
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}
