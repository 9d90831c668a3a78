package auth

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrPasswordTooShort    = errors.New("password must contain at least 8 characters")
	ErrPasswordNumeric     = errors.New("password can't be entirely numeric")
	ErrPasswordTooSimilar  = errors.New("password is too similar to the username or email")
	ErrPasswordsDoNotMatch = errors.New("the two password fields didn't match")
)

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ValidatePassword applies the account password policy.
func ValidatePassword(password, username, email string) error {
	if len([]rune(password)) < minPasswordLength {
		return ErrPasswordTooShort
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return ErrPasswordNumeric
	}
	lowered := strings.ToLower(password)
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	for _, attr := range []string{strings.ToLower(username), local} {
		if len(attr) >= 3 && (lowered == attr || strings.Contains(lowered, attr)) {
			return ErrPasswordTooSimilar
		}
	}
	return nil
}
