package domain

import (
	"fmt"
	"strings"
	"time"
)

// AccountStatus is the state of a provisioned directory account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// DefaultTitle is assigned to users provisioned from a request.
const DefaultTitle = "New Employee"

// DirectoryUser is a provisioned entry of the internal directory.
// The JSON shape is the persisted snapshot format.
type DirectoryUser struct {
	ID           string        `json:"id"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	Department   string        `json:"department"`
	Title        string        `json:"title"`
	EmployeeID   string        `json:"employeeId"`
	Status       AccountStatus `json:"status"`
	RequestID    int64         `json:"requestId"`
	Created      time.Time     `json:"created"`
	LastModified time.Time     `json:"lastModified"`
}

// EmployeeIDFor derives the employee id of the user provisioned from requestID.
func EmployeeIDFor(requestID int64) string {
	return fmt.Sprintf("EMP%03d", requestID)
}

// NewDirectoryUserFromRequest synthesizes the directory record for a request.
func NewDirectoryUserFromRequest(req AccountRequest, title, id string, now time.Time) DirectoryUser {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return DirectoryUser{
		ID:           id,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Department:   req.Department,
		Title:        title,
		EmployeeID:   EmployeeIDFor(req.ID),
		Status:       AccountStatusActive,
		RequestID:    req.ID,
		Created:      now,
		LastModified: now,
	}
}

// FullName joins first and last name.
func (u DirectoryUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Matches reports whether query is a case-insensitive substring of the
// user's first name, last name, email or employee id. An empty query matches.
func (u DirectoryUser) Matches(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	for _, field := range []string{u.FirstName, u.LastName, u.Email, u.EmployeeID} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
