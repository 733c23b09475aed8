package dto

import (
	"time"

	"github.com/spec-kit/directory-service/internal/domain"
	"github.com/spec-kit/directory-service/internal/service"
)

// DirectoryUserResponse represents a provisioned user.
type DirectoryUserResponse struct {
	ID           string               `json:"id"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	FullName     string               `json:"full_name"`
	Email        string               `json:"email"`
	Department   string               `json:"department"`
	Title        string               `json:"title"`
	EmployeeID   string               `json:"employee_id"`
	Status       domain.AccountStatus `json:"status"`
	StatusBadge  BadgeResponse        `json:"status_badge"`
	RequestID    int64                `json:"request_id"`
	Created      time.Time            `json:"created"`
	LastModified time.Time            `json:"last_modified"`
}

// DirectoryListResponse wraps a search result with the directory size.
type DirectoryListResponse struct {
	Total   int                     `json:"total"`
	Matched int                     `json:"matched"`
	Users   []DirectoryUserResponse `json:"users"`
}

// ConnectionConfigRequest payload.
type ConnectionConfigRequest struct {
	URL          string `json:"url"`
	BindDN       string `json:"bind_dn"`
	BindPassword string `json:"bind_password"`
	BaseDN       string `json:"base_dn"`
}

// ConnectionConfigResponse never carries the password.
type ConnectionConfigResponse struct {
	URL         string `json:"url"`
	BindDN      string `json:"bind_dn"`
	BaseDN      string `json:"base_dn"`
	PasswordSet bool   `json:"password_set"`
}

// SyncStatusResponse represents the sync panel state.
type SyncStatusResponse struct {
	Connected   bool                      `json:"connected"`
	ConnectedAt *time.Time                `json:"connected_at"`
	LastSyncAt  *time.Time                `json:"last_sync_at"`
	Source      *ConnectionConfigResponse `json:"source"`
	Target      *ConnectionConfigResponse `json:"target"`
}

// DirectoryEntryResponse represents a source directory entry.
type DirectoryEntryResponse struct {
	DN         string           `json:"dn"`
	RDN        string           `json:"rdn"`
	Type       domain.EntryType `json:"type"`
	Status     string           `json:"status"`
	Attributes []string         `json:"attributes"`
	InScope    bool             `json:"in_scope"`
}

// NotificationResponse represents a feed entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	EventType string    `json:"event_type"`
	RequestID int64     `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDirectoryUserResponse maps a directory user.
func NewDirectoryUserResponse(u domain.DirectoryUser) DirectoryUserResponse {
	return DirectoryUserResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		Email:        u.Email,
		Department:   u.Department,
		Title:        u.Title,
		EmployeeID:   u.EmployeeID,
		Status:       u.Status,
		StatusBadge:  NewBadgeResponse(string(u.Status)),
		RequestID:    u.RequestID,
		Created:      u.Created,
		LastModified: u.LastModified,
	}
}

// ToDomain converts the payload.
func (r ConnectionConfigRequest) ToDomain() domain.ConnectionConfig {
	return domain.ConnectionConfig{
		URL:          r.URL,
		BindDN:       r.BindDN,
		BindPassword: r.BindPassword,
		BaseDN:       r.BaseDN,
	}
}

// NewSyncStatusResponse maps the sync state.
func NewSyncStatusResponse(s service.SyncStatus) SyncStatusResponse {
	return SyncStatusResponse{
		Connected:   s.Connected,
		ConnectedAt: s.ConnectedAt,
		LastSyncAt:  s.LastSyncAt,
		Source:      connectionConfigResponse(s.Source),
		Target:      connectionConfigResponse(s.Target),
	}
}

// NewDirectoryEntryResponse maps an entry view.
func NewDirectoryEntryResponse(v service.EntryView) DirectoryEntryResponse {
	return DirectoryEntryResponse{
		DN:         v.Entry.DN,
		RDN:        v.RDN,
		Type:       v.Entry.Type,
		Status:     v.Entry.SyncStatus,
		Attributes: v.Entry.Attributes,
		InScope:    v.InScope,
	}
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n service.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Level:     string(n.Level),
		Message:   n.Message,
		EventType: string(n.EventType),
		RequestID: n.RequestID,
		CreatedAt: n.CreatedAt,
	}
}

func connectionConfigResponse(c *domain.ConnectionConfig) *ConnectionConfigResponse {
	if c == nil {
		return nil
	}
	return &ConnectionConfigResponse{
		URL:         c.URL,
		BindDN:      c.BindDN,
		BaseDN:      c.BaseDN,
		PasswordSet: c.BindPassword != "",
	}
}
