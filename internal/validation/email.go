package validation

import (
	"regexp"
	"strings"
)

// emailPattern is a syntax gate only: local@domain.tld with an alphabetic TLD
// of at least two letters. No DNS or mailbox checks are made.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates a respondent address and returns it trimmed.
func Email(candidate string) (string, error) {
	email := strings.TrimSpace(candidate)
	if email == "" {
		return "", &Error{Reason: "Please provide an email address."}
	}
	if !emailPattern.MatchString(email) {
		return "", &Error{Reason: "Please provide a valid email address (e.g., name@example.com)."}
	}
	return email, nil
}
