package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadgeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		want   Badge
	}{
		{"pending", Badge{Label: "Pending", Tone: BadgeToneWarning}},
		{"approved", Badge{Label: "Approved", Tone: BadgeToneInfo}},
		{"provisioning", Badge{Label: "Provisioning", Tone: BadgeToneInfo}},
		{"provisioned", Badge{Label: "Provisioned", Tone: BadgeToneSuccess}},
		{"rejected", Badge{Label: "Rejected", Tone: BadgeToneDanger}},
		{"active", Badge{Label: "Active", Tone: BadgeToneSuccess}},
		{"inactive", Badge{Label: "Inactive", Tone: BadgeToneNeutral}},
		{"archived", Badge{Label: "Archived", Tone: BadgeToneNeutral}},
		{"", Badge{Label: "", Tone: BadgeToneNeutral}},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, BadgeFor(tt.status))
		})
	}
}
