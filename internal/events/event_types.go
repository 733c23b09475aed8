package events

import (
	"time"

	"github.com/spec-kit/directory-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted           EventType = "request_submitted"
	EventRequestApproved            EventType = "request_approved"
	EventRequestRejected            EventType = "request_rejected"
	EventRequestProvisioningStarted EventType = "request_provisioning_started"
	EventRequestProvisioned         EventType = "request_provisioned"
	EventRequestProvisioningFailed  EventType = "request_provisioning_failed"
	EventDirectoryConnected         EventType = "directory_connected"
	EventDirectoryRefreshed         EventType = "directory_refreshed"
	EventDirectorySynced            EventType = "directory_synced"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID int64       `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	Email      string `json:"email"`
	Department string `json:"department"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Reason    string               `json:"reason,omitempty"`
}

// RequestProvisionedPayload payload.
type RequestProvisionedPayload struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
}

// DirectoryActionPayload payload.
type DirectoryActionPayload struct {
	Target  string `json:"target,omitempty"`
	Entries int    `json:"entries"`
}
