package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BadgeTone groups statuses into display styles.
type BadgeTone string

const (
	BadgeToneNeutral BadgeTone = "neutral"
	BadgeToneInfo    BadgeTone = "info"
	BadgeToneWarning BadgeTone = "warning"
	BadgeToneSuccess BadgeTone = "success"
	BadgeToneDanger  BadgeTone = "danger"
)

// Badge is the display form of a status value.
type Badge struct {
	Label string
	Tone  BadgeTone
}

var badgeTones = map[string]BadgeTone{
	string(RequestStatusPending):      BadgeToneWarning,
	string(RequestStatusApproved):     BadgeToneInfo,
	string(RequestStatusProvisioning): BadgeToneInfo,
	string(RequestStatusProvisioned):  BadgeToneSuccess,
	string(RequestStatusRejected):     BadgeToneDanger,
	string(AccountStatusActive):       BadgeToneSuccess,
	string(AccountStatusInactive):     BadgeToneNeutral,
}

// BadgeFor maps a request or account status to its label and tone.
func BadgeFor(status string) Badge {
	tone, ok := badgeTones[strings.ToLower(status)]
	if !ok {
		tone = BadgeToneNeutral
	}
	return Badge{Label: capitalize(status), Tone: tone}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
