package domain

import (
	"strings"
	"unicode"
)

// ReduceToAlphanum strips every character that is not a letter or digit.
// It is idempotent.
func ReduceToAlphanum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
