package dto

import (
	"time"

	"github.com/spec-kit/directory-service/internal/domain"
)

// SubmitRequestRequest payload.
type SubmitRequestRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Department    string `json:"department"`
	Justification string `json:"justification"`
}

// BadgeResponse is the display form of a status.
type BadgeResponse struct {
	Label string           `json:"label"`
	Tone  domain.BadgeTone `json:"tone"`
}

// AccountRequestResponse represents a request in listings.
type AccountRequestResponse struct {
	ID            int64                  `json:"id"`
	FirstName     string                 `json:"first_name"`
	LastName      string                 `json:"last_name"`
	Email         string                 `json:"email"`
	Department    string                 `json:"department"`
	Justification string                 `json:"justification"`
	Status        domain.RequestStatus   `json:"status"`
	StatusBadge   BadgeResponse          `json:"status_badge"`
	SubmittedDate string                 `json:"submitted_date"`
	SubmittedAt   time.Time              `json:"submitted_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	FailureReason string                 `json:"failure_reason,omitempty"`
	History       []StatusChangeResponse `json:"history,omitempty"`
}

// StatusChangeResponse is one entry of a request's history.
type StatusChangeResponse struct {
	From   domain.RequestStatus `json:"from"`
	To     domain.RequestStatus `json:"to"`
	Reason string               `json:"reason,omitempty"`
	At     time.Time            `json:"at"`
}

// NewBadgeResponse maps a status to its badge.
func NewBadgeResponse(status string) BadgeResponse {
	b := domain.BadgeFor(status)
	return BadgeResponse{Label: b.Label, Tone: b.Tone}
}

// NewAccountRequestResponse maps a request. History is included when withHistory is set.
func NewAccountRequestResponse(req *domain.AccountRequest, withHistory bool) AccountRequestResponse {
	resp := AccountRequestResponse{
		ID:            req.ID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Department:    req.Department,
		Justification: req.Justification,
		Status:        req.Status,
		StatusBadge:   NewBadgeResponse(string(req.Status)),
		SubmittedDate: req.SubmittedAt.Format(time.DateOnly),
		SubmittedAt:   req.SubmittedAt,
		UpdatedAt:     req.UpdatedAt,
		FailureReason: req.FailureReason,
	}
	if withHistory {
		resp.History = make([]StatusChangeResponse, 0, len(req.History))
		for _, h := range req.History {
			resp.History = append(resp.History, StatusChangeResponse{From: h.From, To: h.To, Reason: h.Reason, At: h.At})
		}
	}
	return resp
}
