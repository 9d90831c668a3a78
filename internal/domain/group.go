package domain

import "sort"

// Built-in group names created at bootstrap.
const (
	GroupSuperuser      = "superuser"
	GroupAdmin          = "admin"
	GroupSupervisor     = "supervisor"
	GroupHumanResources = "human_resources"
	GroupRecruiter      = "recruiter"
	GroupSourcer        = "sourcer"
	GroupHiringManager  = "hiring_manager"
	GroupLabManager     = "lab_manager"
	GroupReporting      = "reporting"
	GroupPayroll        = "payroll"
	GroupEmployee       = "employee"
	GroupCandidate      = "candidate"
	GroupAnonymous      = "ANON"
	GroupBot            = "BOT"
)

// Group is a permission tier. Supervisor and admin flags live on the group itself.
type Group struct {
	ID           string
	Name         string
	IsSupervisor bool
	IsAdmin      bool
	Permissions  []Permission
}

// Editable reports whether the group may be renamed or have its flags changed.
func (g *Group) Editable() bool {
	_, builtin := nonEditableGroups[g.Name]
	return !builtin
}

// HasPermission reports whether the group grants code.
func (g *Group) HasPermission(code Permission) bool {
	if g.Name == GroupSuperuser {
		return true
	}
	for _, p := range g.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

var nonEditableGroups = map[string]struct{}{
	GroupSuperuser:      {},
	GroupAdmin:          {},
	GroupSupervisor:     {},
	GroupHumanResources: {},
	GroupRecruiter:      {},
	GroupSourcer:        {},
	GroupHiringManager:  {},
	GroupLabManager:     {},
	GroupReporting:      {},
	GroupPayroll:        {},
	GroupEmployee:       {},
	GroupCandidate:      {},
	GroupAnonymous:      {},
	GroupBot:            {},
}

// NonEditableGroups lists built-in groups that cannot be modified through the admin console.
func NonEditableGroups() []string {
	names := make([]string, 0, len(nonEditableGroups))
	for name := range nonEditableGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitialGroups is the bootstrap group set.
func InitialGroups() []Group {
	return []Group{
		{Name: GroupSuperuser, IsSupervisor: true, IsAdmin: true},
		{Name: GroupAdmin, IsSupervisor: true, IsAdmin: true, Permissions: AllPermissions()},
		{Name: GroupSupervisor, IsSupervisor: true, Permissions: []Permission{
			PermViewUser, PermViewGroup, PermViewApplication, PermChangeApplication, PermViewPerson, PermViewStatus, PermChangeStatus, PermViewLookup,
		}},
		{Name: GroupHumanResources, Permissions: []Permission{
			PermViewUser, PermChangeUser, PermViewApplication, PermChangeApplication, PermViewPerson, PermChangePerson, PermViewStatus, PermChangeStatus,
		}},
		{Name: GroupRecruiter, Permissions: []Permission{PermViewApplication, PermChangeApplication, PermViewPerson, PermViewStatus, PermChangeStatus}},
		{Name: GroupSourcer, Permissions: []Permission{PermViewApplication, PermViewPerson}},
		{Name: GroupHiringManager, Permissions: []Permission{PermViewApplication, PermViewPerson, PermViewStatus}},
		{Name: GroupLabManager, Permissions: []Permission{PermViewApplication, PermViewStatus}},
		{Name: GroupReporting, Permissions: []Permission{PermViewApplication, PermViewUser, PermViewStatus}},
		{Name: GroupPayroll, Permissions: []Permission{PermViewUser, PermViewPerson}},
		{Name: GroupEmployee},
		{Name: GroupCandidate},
		{Name: GroupAnonymous},
		{Name: GroupBot},
	}
}

// Permission is a capability code.
type Permission string

const (
	PermViewUser          Permission = "view_user"
	PermAddUser           Permission = "add_user"
	PermChangeUser        Permission = "change_user"
	PermViewGroup         Permission = "view_group"
	PermAddGroup          Permission = "add_group"
	PermChangeGroup       Permission = "change_group"
	PermViewApplication   Permission = "view_application"
	PermChangeApplication Permission = "change_application"
	PermViewPerson        Permission = "view_person"
	PermChangePerson      Permission = "change_person"
	PermViewLookup        Permission = "view_lookup"
	PermChangeLookup      Permission = "change_lookup"
	PermViewStatus        Permission = "view_status"
	PermChangeStatus      Permission = "change_status"
)

var permissionDescriptions = map[Permission]string{
	PermViewUser:          "Can view users",
	PermAddUser:           "Can add users",
	PermChangeUser:        "Can change users",
	PermViewGroup:         "Can view groups",
	PermAddGroup:          "Can add groups",
	PermChangeGroup:       "Can change groups",
	PermViewApplication:   "Can view applications",
	PermChangeApplication: "Can change applications",
	PermViewPerson:        "Can view persons",
	PermChangePerson:      "Can change persons",
	PermViewLookup:        "Can view lookup tables",
	PermChangeLookup:      "Can change lookup tables",
	PermViewStatus:        "Can view status",
	PermChangeStatus:      "Can change status",
}

// Valid reports whether p is in the catalog.
func (p Permission) Valid() bool {
	_, ok := permissionDescriptions[p]
	return ok
}

// Description returns the human readable label.
func (p Permission) Description() string {
	return permissionDescriptions[p]
}

// AllPermissions returns the catalog sorted by code.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(permissionDescriptions))
	for p := range permissionDescriptions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
