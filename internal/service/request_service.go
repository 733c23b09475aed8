package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/events"
	"github.com/spec-kit/directory-service/internal/observability"
	"github.com/spec-kit/directory-service/internal/repository"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// RequestService coordinates the account request workflow.
type RequestService struct {
	requests    repository.RequestRepository
	provisioner *Provisioner
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         Clock
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Provisioner *Provisioner
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       Clock
}

// RequestSubmitInput describes the account request form.
type RequestSubmitInput struct {
	FirstName     string
	LastName      string
	Email         string
	Department    string
	Justification string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:    deps.RequestRepo,
		provisioner: deps.Provisioner,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clockOrDefault(deps.Clock),
	}
}

// Submit validates the form and records a pending request.
func (s *RequestService) Submit(ctx context.Context, input RequestSubmitInput) (*domain.AccountRequest, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	req := &domain.AccountRequest{
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Email:         input.Email,
		Department:    input.Department,
		Justification: input.Justification,
		Status:        domain.RequestStatusPending,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		var dup *repository.DuplicateRequestError
		if errors.As(err, &dup) {
			return nil, apperrors.NewDuplicateRequest(input.Email, dup.ExistingID)
		}
		return nil, err
	}

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Payload: events.RequestSubmittedPayload{
			Email:      req.Email,
			Department: req.Department,
		},
	})
	s.logger.Info("account request submitted", zap.Int64("request_id", req.ID), zap.String("email", req.Email))
	return req, nil
}

// List returns requests in submission order, optionally narrowed by status.
func (s *RequestService) List(ctx context.Context, statuses []domain.RequestStatus) ([]domain.AccountRequest, error) {
	for _, status := range statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
		}
	}
	return s.requests.List(ctx, repository.RequestFilter{Statuses: statuses})
}

// Get returns one request.
func (s *RequestService) Get(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, mapRequestError(err, id, "", "")
	}
	return req, nil
}

// Approve moves a pending request to approved and starts provisioning.
func (s *RequestService) Approve(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	const reason = "approved"
	req, previous, err := transitionRequest(ctx, s.requests, id, domain.RequestStatusPending, domain.RequestStatusApproved, reason, s.now(), nil)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(string(previous), string(req.Status))
	publish(ctx, s.dispatcher, s.now, statusChangedEvent(events.EventRequestApproved, req, previous, reason))
	s.logger.Info("account request approved", zap.Int64("request_id", id))

	if s.provisioner == nil {
		return req, nil
	}
	return s.provisioner.Start(ctx, id)
}

// Reject moves a pending request to rejected. Any other status is refused.
func (s *RequestService) Reject(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	const reason = "rejected"
	req, previous, err := transitionRequest(ctx, s.requests, id, domain.RequestStatusPending, domain.RequestStatusRejected, reason, s.now(), nil)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransition(string(previous), string(req.Status))
	publish(ctx, s.dispatcher, s.now, statusChangedEvent(events.EventRequestRejected, req, previous, reason))
	s.logger.Info("account request rejected", zap.Int64("request_id", id))
	return req, nil
}

// Retry restarts provisioning for an approved request whose last attempt failed.
func (s *RequestService) Retry(ctx context.Context, id int64) (*domain.AccountRequest, error) {
	if s.provisioner == nil {
		return nil, apperrors.NewUnavailable("provisioning disabled", nil)
	}
	return s.provisioner.Start(ctx, id)
}

func (in RequestSubmitInput) normalize() RequestSubmitInput {
	return RequestSubmitInput{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         strings.TrimSpace(in.Email),
		Department:    strings.TrimSpace(in.Department),
		Justification: strings.TrimSpace(in.Justification),
	}
}

func (in RequestSubmitInput) validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"department", in.Department},
		{"justification", in.Justification},
	}
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields missing", map[string]any{"missing": missing})
	}

	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return apperrors.NewValidationError("invalid email address", map[string]any{"field": "email"})
	}
	return nil
}
