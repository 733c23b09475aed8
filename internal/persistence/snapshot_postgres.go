package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/directory-service/internal/domain"
)

// PostgresSnapshotStore keeps the directory user list in one kv_entries row.
type PostgresSnapshotStore struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresSnapshotStore builds the store.
func NewPostgresSnapshotStore(pool *pgxpool.Pool, key string) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{pool: pool, key: key}
}

func (s *PostgresSnapshotStore) Load(ctx context.Context) ([]domain.DirectoryUser, error) {
	const query = `SELECT value FROM kv_entries WHERE key=$1`
	var raw []byte
	err := s.pool.QueryRow(ctx, query, s.key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.DirectoryUser{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

func (s *PostgresSnapshotStore) Save(ctx context.Context, users []domain.DirectoryUser) error {
	payload, err := encodeSnapshot(users)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO kv_entries (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	_, err = s.pool.Exec(ctx, query, s.key, string(payload))
	return err
}
