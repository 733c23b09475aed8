package domain

import (
	"errors"
	"fmt"
	"time"
)

// RequestStatus enumerates lifecycle states for account requests.
type RequestStatus string

const (
	RequestStatusPending      RequestStatus = "pending"
	RequestStatusApproved     RequestStatus = "approved"
	RequestStatusRejected     RequestStatus = "rejected"
	RequestStatusProvisioning RequestStatus = "provisioning"
	RequestStatusProvisioned  RequestStatus = "provisioned"
)

// ErrInvalidTransition is returned when a status change is not in the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// AccountRequest is an ask for a new directory account.
type AccountRequest struct {
	ID            int64
	FirstName     string
	LastName      string
	Email         string
	Department    string
	Justification string
	Status        RequestStatus
	SubmittedAt   time.Time
	UpdatedAt     time.Time
	FailureReason string
	History       []StatusChange
}

// StatusChange is an immutable audit entry for a request.
type StatusChange struct {
	From   RequestStatus
	To     RequestStatus
	Reason string
	At     time.Time
}

var allowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:      {RequestStatusApproved, RequestStatusRejected},
	RequestStatusApproved:     {RequestStatusProvisioning},
	RequestStatusProvisioning: {RequestStatusProvisioned, RequestStatusApproved},
	RequestStatusRejected:     {},
	RequestStatusProvisioned:  {},
}

// CanTransition reports whether current may move to next.
func CanTransition(current, next RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from status.
func IsTerminal(status RequestStatus) bool {
	next, ok := allowedTransitions[status]
	return ok && len(next) == 0
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Transition moves the request to next and records the change.
func (r *AccountRequest) Transition(next RequestStatus, reason string, at time.Time) error {
	if !CanTransition(r.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, next)
	}
	r.History = append(r.History, StatusChange{
		From:   r.Status,
		To:     next,
		Reason: reason,
		At:     at,
	})
	r.Status = next
	r.UpdatedAt = at
	return nil
}

// Clone returns a deep copy safe to hand outside a store.
func (r AccountRequest) Clone() AccountRequest {
	out := r
	if r.History != nil {
		out.History = append([]StatusChange(nil), r.History...)
	}
	return out
}
