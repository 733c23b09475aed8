package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/events"
	"github.com/spec-kit/directory-service/internal/repository"
	apperrors "github.com/spec-kit/directory-service/pkg/util"
)

// Clock returns the current time.
type Clock func() time.Time

// transitionRequest moves request id from expected to next under the store
// lock and returns the updated record with its previous status. A request in
// any other status is refused even when the table would allow the edge.
func transitionRequest(ctx context.Context, repo repository.RequestRepository, id int64, expected, next domain.RequestStatus, reason string, at time.Time, mutate func(*domain.AccountRequest)) (*domain.AccountRequest, domain.RequestStatus, error) {
	var previous domain.RequestStatus
	req, err := repo.Update(ctx, id, func(r *domain.AccountRequest) error {
		previous = r.Status
		if r.Status != expected {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.Status, next)
		}
		if err := r.Transition(next, reason, at); err != nil {
			return err
		}
		if mutate != nil {
			mutate(r)
		}
		return nil
	})
	if err != nil {
		return nil, previous, mapRequestError(err, id, previous, next)
	}
	return req, previous, nil
}

func mapRequestError(err error, id int64, from, to domain.RequestStatus) error {
	switch {
	case errors.Is(err, repository.ErrRequestNotFound):
		return apperrors.NewNotFound("account request", map[string]any{"id": id})
	case errors.Is(err, domain.ErrInvalidTransition):
		return apperrors.NewInvalidTransition(string(from), string(to), err)
	default:
		return err
	}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, now Clock, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	_ = dispatcher.Publish(ctx, event)
}

func statusChangedEvent(eventType events.EventType, req *domain.AccountRequest, from domain.RequestStatus, reason string) events.Event {
	return events.Event{
		Type:      eventType,
		RequestID: req.ID,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: from,
			NewStatus: req.Status,
			Reason:    reason,
		},
	}
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
