package domain

import (
	"strings"
	"time"
)

// EmployeeStatus tracks a user's employment relationship with the company.
type EmployeeStatus string

const (
	EmployeeStatusActive        EmployeeStatus = "ACTIVE"
	EmployeeStatusTermed        EmployeeStatus = "TERMED"
	EmployeeStatusNeverEmployed EmployeeStatus = "NEVER_EMPLOYED"
	EmployeeStatusNonRehirable  EmployeeStatus = "NON_REHIRABLE"
)

// Valid reports whether the status is one of the known values.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeStatusActive, EmployeeStatusTermed, EmployeeStatusNeverEmployed, EmployeeStatusNonRehirable:
		return true
	}
	return false
}

// User is an authentication principal. It is distinct from Person.
type User struct {
	ID             string
	Username       string
	Email          string
	FirstNames     string
	LastNames      string
	BirthDate      *time.Time
	PasswordHash   string
	IsActive       bool
	IsVerified     bool
	AcceptedTOS    bool
	EmployeeStatus EmployeeStatus
	PersonID       *string
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName joins first and last names.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstNames + " " + u.LastNames)
}

// Gender values accepted on profiles and applications.
type Gender string

const (
	GenderMale      Gender = "M"
	GenderFemale    Gender = "F"
	GenderRatherNot Gender = "N"
)

// Profile holds optional presentation data for a user.
type Profile struct {
	UserID     string
	Gender     Gender
	Bio        string
	PictureKey string
	UpdatedAt  time.Time
}

// AgeAt returns the number of full years between birth and at.
func AgeAt(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		years--
	}
	return years
}

// Valid reports whether g is a known gender value. Empty is allowed.
func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderRatherNot:
		return true
	}
	return false
}
