package session

import (
	"errors"
	"strings"
)

const countryPrefix = "+91"

var (
	// ErrInvalidPhone is returned for numbers that are not ten local digits.
	ErrInvalidPhone = errors.New("phone must be a 10 digit mobile number")
	// ErrInvalidCode is returned for codes that are not exactly six digits.
	ErrInvalidCode = errors.New("code must be exactly 6 digits")
)

// NormalizePhone strips formatting and returns the +91 form of a ten digit
// mobile number. A number already carrying the 91 country code is accepted.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return countryPrefix + digits, nil
	case len(digits) == 12 && strings.HasPrefix(strings.TrimSpace(raw), countryPrefix):
		return "+" + digits, nil
	default:
		return "", ErrInvalidPhone
	}
}

// ValidCode reports whether code is exactly six ASCII decimal digits.
func ValidCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
