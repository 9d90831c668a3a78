package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReduceToAlphanum(t *testing.T) {
	cases := map[string]string{
		"123-4567890-1":    "12345678901",
		"(809) 555-1234":   "8095551234",
		"  ab.c-12 ":       "abc12",
		"":                 "",
		"---":              "",
		"pa$$port 99 ñ":    "paport99ñ",
	}
	for in, want := range cases {
		got := ReduceToAlphanum(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, ReduceToAlphanum(got), "normalization must be idempotent for %q", in)
	}
}

func TestNationalIDFormatted(t *testing.T) {
	cedula := NationalID{Type: NationalIDTypeCedula, Number: "12345678901"}
	assert.Equal(t, "123-4567890-1", cedula.Formatted())

	ssn := NationalID{Type: NationalIDTypeSocialSecurity, Number: "123456789"}
	assert.Equal(t, "123-45-6789", ssn.Formatted())

	passport := NationalID{Type: NationalIDTypePassport, Number: "AB123"}
	assert.Equal(t, "AB123", passport.Formatted())
}

func TestGroupEditableAndPermissions(t *testing.T) {
	admin := Group{Name: GroupAdmin, Permissions: []Permission{PermViewUser}}
	assert.False(t, admin.Editable())
	assert.True(t, admin.HasPermission(PermViewUser))
	assert.False(t, admin.HasPermission(PermChangeStatus))

	super := Group{Name: GroupSuperuser}
	assert.True(t, super.HasPermission(PermChangeStatus))

	recruiter := Group{Name: GroupRecruiter}
	assert.False(t, recruiter.Editable())

	custom := Group{Name: "night_shift"}
	assert.True(t, custom.Editable())
}

func TestInitialGroupsFlags(t *testing.T) {
	byName := map[string]Group{}
	for _, g := range InitialGroups() {
		byName[g.Name] = g
		for _, p := range g.Permissions {
			assert.True(t, p.Valid(), "%s grants unknown permission %s", g.Name, p)
		}
	}
	assert.Len(t, byName, 14)
	assert.True(t, byName[GroupSupervisor].IsSupervisor)
	assert.False(t, byName[GroupSupervisor].IsAdmin)
	assert.True(t, byName[GroupAdmin].IsAdmin)
	assert.False(t, byName[GroupCandidate].IsSupervisor)
}

func TestAgeAt(t *testing.T) {
	birth := time.Date(2008, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, AgeAt(birth, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, AgeAt(birth, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
}
