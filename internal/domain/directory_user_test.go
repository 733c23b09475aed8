package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmployeeIDFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "EMP001", EmployeeIDFor(1))
	assert.Equal(t, "EMP042", EmployeeIDFor(42))
	assert.Equal(t, "EMP1234", EmployeeIDFor(1234))
}

func TestNewDirectoryUserFromRequest(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	req := AccountRequest{
		ID:         3,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Department: "Engineering",
	}

	user := NewDirectoryUserFromRequest(req, "", "u-1", now)

	assert.Equal(t, DirectoryUser{
		ID:           "u-1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		Department:   "Engineering",
		Title:        DefaultTitle,
		EmployeeID:   "EMP003",
		Status:       AccountStatusActive,
		RequestID:    3,
		Created:      now,
		LastModified: now,
	}, user)
	assert.Equal(t, "Ada Lovelace", user.FullName())

	custom := NewDirectoryUserFromRequest(req, "Analyst", "u-2", now)
	assert.Equal(t, "Analyst", custom.Title)
}

func TestDirectoryUser_Matches(t *testing.T) {
	t.Parallel()

	user := DirectoryUser{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Research", EmployeeID: "EMP001"}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"ada", true},
		{"LOVE", true},
		{"example.com", true},
		{"emp001", true},
		{"research", false},
		{"grace", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, user.Matches(tt.query))
		})
	}
}
