package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spec-kit/directory-service/internal/domain"
)

var (
	ErrDirectoryUserNotFound = errors.New("directory user not found")
	ErrEmployeeIDTaken       = errors.New("employee id already in use")
	ErrAlreadyProvisioned    = errors.New("request already provisioned")
)

// SnapshotStore persists the whole directory user list as one value.
type SnapshotStore interface {
	Load(ctx context.Context) ([]domain.DirectoryUser, error)
	Save(ctx context.Context, users []domain.DirectoryUser) error
}

// DirectoryRepository is the collection of provisioned users.
type DirectoryRepository interface {
	Add(ctx context.Context, user domain.DirectoryUser) error
	List(ctx context.Context) ([]domain.DirectoryUser, error)
	Search(ctx context.Context, query string) ([]domain.DirectoryUser, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.DirectoryUser, error)
	Count() int
}

type directoryRepository struct {
	mu       sync.RWMutex
	users    []domain.DirectoryUser
	snapshot SnapshotStore
}

// NewDirectoryRepository loads the persisted users from snapshot and returns the store.
func NewDirectoryRepository(ctx context.Context, snapshot SnapshotStore) (DirectoryRepository, error) {
	if snapshot == nil {
		snapshot = NewMemorySnapshotStore()
	}
	users, err := snapshot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load directory snapshot: %w", err)
	}
	return &directoryRepository{users: users, snapshot: snapshot}, nil
}

func (r *directoryRepository) Add(ctx context.Context, user domain.DirectoryUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.EmployeeID == user.EmployeeID {
			return fmt.Errorf("%w: %s", ErrEmployeeIDTaken, user.EmployeeID)
		}
		if user.RequestID != 0 && existing.RequestID == user.RequestID {
			return fmt.Errorf("%w: request %d", ErrAlreadyProvisioned, user.RequestID)
		}
	}

	next := make([]domain.DirectoryUser, len(r.users), len(r.users)+1)
	copy(next, r.users)
	next = append(next, user)
	if err := r.snapshot.Save(ctx, next); err != nil {
		return fmt.Errorf("save directory snapshot: %w", err)
	}
	r.users = next
	return nil
}

func (r *directoryRepository) List(ctx context.Context) ([]domain.DirectoryUser, error) {
	return r.Search(ctx, "")
}

func (r *directoryRepository) Search(ctx context.Context, query string) ([]domain.DirectoryUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.DirectoryUser, 0, len(r.users))
	for _, u := range r.users {
		if u.Matches(query) {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *directoryRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.DirectoryUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.EmployeeID == employeeID {
			out := u
			return &out, nil
		}
	}
	return nil, ErrDirectoryUserNotFound
}

func (r *directoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// MemorySnapshotStore keeps the snapshot in process memory.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	users []domain.DirectoryUser
	saves int
}

// NewMemorySnapshotStore returns a snapshot store seeded with users.
func NewMemorySnapshotStore(users ...domain.DirectoryUser) *MemorySnapshotStore {
	return &MemorySnapshotStore{users: append([]domain.DirectoryUser(nil), users...)}
}

func (m *MemorySnapshotStore) Load(ctx context.Context) ([]domain.DirectoryUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.DirectoryUser(nil), m.users...), nil
}

func (m *MemorySnapshotStore) Save(ctx context.Context, users []domain.DirectoryUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]domain.DirectoryUser(nil), users...)
	m.saves++
	return nil
}

// Saves reports how many times the snapshot was rewritten.
func (m *MemorySnapshotStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
