package domain

import "time"

// TokenPurpose scopes one-time tokens to a single flow.
type TokenPurpose string

const (
	TokenPurposeVerify TokenPurpose = "verify"
	TokenPurposeReset  TokenPurpose = "reset"
)

// AccessToken describes an issued bearer token.
type AccessToken struct {
	ID        string
	UserID    string
	Groups    []string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
