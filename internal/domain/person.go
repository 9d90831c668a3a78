package domain

import (
	"strings"
	"time"
)

// Person is the canonical identity of an applicant or account holder.
type Person struct {
	ID               string
	FirstNames       string
	LastNames        string
	DisplayName      string
	PrimaryPhone     string
	SecondaryPhone   *string
	NationalIDType   NationalIDType
	NationalIDNumber string
	Email            string
	BirthDate        *time.Time
	Bio              string
	Gender           Gender
	PictureKey       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultDisplayName returns "first last".
func DefaultDisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
