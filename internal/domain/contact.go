package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizePhone converts a North American number to +1XXXXXXXXXX. It
// reports false when the input does not hold 10 digits, or 11 with a leading 1.
func NormalizePhone(input string) (string, bool) {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	default:
		return "", false
	}
}

// NormalizeEmail trims and lower-cases an address. Empty input yields "", true.
func NormalizeEmail(input string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(input))
	if email == "" {
		return "", true
	}
	return email, emailPattern.MatchString(email)
}
