package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/config"
	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/repository"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func sampleUser() domain.DirectoryUser {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	req := domain.AccountRequest{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Engineering"}
	return domain.NewDirectoryUserFromRequest(req, "", "3f2c", now)
}

func TestRedisSnapshotStore_MissingKeyLoadsEmpty(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisSnapshotStore(client, "directory:users")

	users, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestRedisSnapshotStore_SaveWritesCamelCaseArray(t *testing.T) {
	s, client := setupTestRedis(t)
	store := NewRedisSnapshotStore(client, "directory:users")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []domain.DirectoryUser{sampleUser()}))

	raw, err := s.Get("directory:users")
	require.NoError(t, err)
	assert.Contains(t, raw, `"employeeId":"EMP001"`)
	assert.Contains(t, raw, `"firstName":"Ada"`)
	assert.Contains(t, raw, `"title":"New Employee"`)
	assert.False(t, s.Exists("other"), "only the configured key is written")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Created.Equal(sampleUser().Created))
	assert.Equal(t, "EMP001", loaded[0].EmployeeID)
}

func TestRedisSnapshotStore_CorruptValue(t *testing.T) {
	s, client := setupTestRedis(t)
	require.NoError(t, s.Set("directory:users", "{not json"))

	_, err := NewRedisSnapshotStore(client, "directory:users").Load(context.Background())
	assert.ErrorContains(t, err, "decode directory snapshot")
}

func TestRedisSnapshotStore_BacksDirectoryAcrossRestarts(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	first, err := repository.NewDirectoryRepository(ctx, NewRedisSnapshotStore(client, "directory:users"))
	require.NoError(t, err)
	require.NoError(t, first.Add(ctx, sampleUser()))

	second, err := repository.NewDirectoryRepository(ctx, NewRedisSnapshotStore(client, "directory:users"))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Count())

	got, err := second.GetByEmployeeID(ctx, "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestRedis_Ping(t *testing.T) {
	s := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: s.Addr()}, zap.NewNop())
	defer r.Close()

	require.NoError(t, r.Ping(context.Background()))

	var missing *Redis
	assert.Error(t, missing.Ping(context.Background()))
}

func TestRunMigrations_SkipsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, t.TempDir(), zap.NewNop()))
}

func TestPostgres_DisabledWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, pg.Enabled())
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrPostgresNotConfigured)
	pg.Close()
}
