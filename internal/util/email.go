package util

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims input and lower-cases the domain part.
// Returns "" if the input is not a bare address.
func NormalizeEmail(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ""
	}

	at := strings.LastIndex(s, "@")
	return s[:at] + "@" + strings.ToLower(s[at+1:])
}
