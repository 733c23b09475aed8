package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/directory-service/internal/domain"
)

// RedisSnapshotStore keeps the directory user list as a JSON array under one key.
type RedisSnapshotStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisSnapshotStore builds the store.
func NewRedisSnapshotStore(client redis.Cmdable, key string) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, key: key}
}

// Load returns the stored users, or an empty list when the key is absent.
func (s *RedisSnapshotStore) Load(ctx context.Context) ([]domain.DirectoryUser, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.DirectoryUser{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

// Save overwrites the key with users.
func (s *RedisSnapshotStore) Save(ctx context.Context, users []domain.DirectoryUser) error {
	payload, err := encodeSnapshot(users)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, payload, 0).Err()
}

func encodeSnapshot(users []domain.DirectoryUser) ([]byte, error) {
	if users == nil {
		users = []domain.DirectoryUser{}
	}
	return json.Marshal(users)
}

func decodeSnapshot(raw []byte) ([]domain.DirectoryUser, error) {
	var users []domain.DirectoryUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode directory snapshot: %w", err)
	}
	if users == nil {
		users = []domain.DirectoryUser{}
	}
	return users, nil
}
