package util

import "strings"

// UsernameFromEmail derives the default username/display name for a fresh
// account from the local part of the email.
func UsernameFromEmail(email string) string {
	name := email
	if at := strings.Index(email, "@"); at >= 0 {
		name = email[:at]
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}
