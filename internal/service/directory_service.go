package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/repository"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// DirectoryService serves read access to provisioned users.
type DirectoryService struct {
	directory repository.DirectoryRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(directory repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{directory: directory}
}

// List returns every user when query is empty, otherwise the users whose
// name, email or employee id contains it. The query is not trimmed.
func (s *DirectoryService) List(ctx context.Context, query string) ([]domain.DirectoryUser, error) {
	return s.directory.Search(ctx, query)
}

// Get returns a single user by employee id.
func (s *DirectoryService) Get(ctx context.Context, employeeID string) (*domain.DirectoryUser, error) {
	user, err := s.directory.GetByEmployeeID(ctx, strings.ToUpper(strings.TrimSpace(employeeID)))
	if errors.Is(err, repository.ErrDirectoryUserNotFound) {
		return nil, apperrors.NewNotFound("directory user", map[string]any{"employee_id": employeeID})
	}
	return user, err
}

// Count returns the directory size.
func (s *DirectoryService) Count() int {
	return s.directory.Count()
}
