package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/domain"
)

// Runs against a real database when POSTGRES_TEST_DSN is set.
func TestPostgresSnapshotStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()

	pg, err := NewPostgres(ctx, config.PostgresConfig{DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, RunMigrations(ctx, pg.PoolHandle(), "../../migrations", zap.NewNop()))

	key := "test-directory-" + t.Name()
	t.Cleanup(func() {
		_, _ = pg.PoolHandle().Exec(context.Background(), `DELETE FROM kv_entries WHERE key=$1`, key)
	})
	store := NewPostgresSnapshotStore(pg.PoolHandle(), key)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Save(ctx, []domain.DirectoryUser{sampleUser()}))
	require.NoError(t, store.Save(ctx, []domain.DirectoryUser{sampleUser(), sampleUser()}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, "EMP001", loaded[0].EmployeeID)
}
