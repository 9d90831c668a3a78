package domain

import "fmt"

// NationalIDType enumerates accepted identity documents.
type NationalIDType string

const (
	NationalIDTypeCedula         NationalIDType = "CEDULA"
	NationalIDTypePassport       NationalIDType = "PASSPORT"
	NationalIDTypeSocialSecurity NationalIDType = "SSN"
)

// Valid reports whether t is known.
func (t NationalIDType) Valid() bool {
	switch t {
	case NationalIDTypeCedula, NationalIDTypePassport, NationalIDTypeSocialSecurity:
		return true
	}
	return false
}

// Label returns the display label.
func (t NationalIDType) Label() string {
	switch t {
	case NationalIDTypeCedula:
		return "Cedula"
	case NationalIDTypePassport:
		return "Passport"
	case NationalIDTypeSocialSecurity:
		return "Social Security Number"
	}
	return string(t)
}

// NationalID is a verified or unverified identity document. Number is stored normalized and is unique.
type NationalID struct {
	ID         string
	Type       NationalIDType
	Number     string
	IsVerified bool
	PersonID   *string
	UserID     *string
}

// Formatted renders the number with the conventional separators for its type.
func (n *NationalID) Formatted() string {
	num := n.Number
	switch n.Type {
	case NationalIDTypeCedula:
		if len(num) == 11 {
			return fmt.Sprintf("%s-%s-%s", num[:3], num[3:10], num[10:])
		}
	case NationalIDTypeSocialSecurity:
		if len(num) == 9 {
			return fmt.Sprintf("%s-%s-%s", num[:3], num[3:5], num[5:])
		}
	}
	return num
}
