package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spec-kit/directory-service/internal/domain"
)

var (
	// ErrRequestNotFound is returned when no request has the given id.
	ErrRequestNotFound  = errors.New("account request not found")
	ErrDuplicateRequest = errors.New("duplicate account request")
)

// DuplicateRequestError carries the id of the open request that blocked a Create.
type DuplicateRequestError struct {
	ExistingID int64
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("%v: request %d is still open", ErrDuplicateRequest, e.ExistingID)
}

func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicateRequest
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Statuses []domain.RequestStatus
}

// RequestRepository holds account requests in submission order.
type RequestRepository interface {
	// Create assigns the next sequence id. It fails with a *DuplicateRequestError
	// when a request with the same email is not rejected.
	Create(ctx context.Context, req *domain.AccountRequest) error
	GetByID(ctx context.Context, id int64) (*domain.AccountRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.AccountRequest, error)
	// Update runs fn on the stored record while holding the store lock.
	// Changes made by fn are discarded when it returns an error.
	Update(ctx context.Context, id int64, fn func(req *domain.AccountRequest) error) (*domain.AccountRequest, error)
}

type requestRepository struct {
	mu      sync.Mutex
	nextID  int64
	order   []int64
	records map[int64]*domain.AccountRequest
}

// NewRequestRepository creates an empty in-memory request store.
func NewRequestRepository() RequestRepository {
	return &requestRepository{records: make(map[int64]*domain.AccountRequest)}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.AccountRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.findActiveByEmail(req.Email); existing != nil {
		return &DuplicateRequestError{ExistingID: existing.ID}
	}

	r.nextID++
	req.ID = r.nextID
	stored := req.Clone()
	r.records[req.ID] = &stored
	r.order = append(r.order, req.ID)
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	out := rec.Clone()
	return &out, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.AccountRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.AccountRequest, 0, len(r.order))
	for _, id := range r.order {
		rec := r.records[id]
		if !statusIn(rec.Status, filter.Statuses) {
			continue
		}
		result = append(result, rec.Clone())
	}
	return result, nil
}

func (r *requestRepository) Update(ctx context.Context, id int64, fn func(req *domain.AccountRequest) error) (*domain.AccountRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	working := rec.Clone()
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.ID = id
	r.records[id] = &working
	out := working.Clone()
	return &out, nil
}

func (r *requestRepository) findActiveByEmail(email string) *domain.AccountRequest {
	for _, id := range r.order {
		rec := r.records[id]
		if rec.Status != domain.RequestStatusRejected && strings.EqualFold(rec.Email, email) {
			return rec
		}
	}
	return nil
}

func statusIn(status domain.RequestStatus, statuses []domain.RequestStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
