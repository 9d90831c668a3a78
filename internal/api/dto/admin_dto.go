package dto

import "time"

// CreateUserRequest is the admin console user form.
type CreateUserRequest struct {
	Username       string   `json:"username" validate:"required,max=150"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	FirstNames     string   `json:"first_names" validate:"required,max=150"`
	LastNames      string   `json:"last_names" validate:"required,max=150"`
	EmployeeStatus string   `json:"employee_status" validate:"omitempty,oneof=ACTIVE TERMED NEVER_EMPLOYED NON_REHIRABLE"`
	Groups         []string `json:"groups"`
	IsActive       bool     `json:"is_active"`
}

// UpdateUserRequest edits an account. Omitted fields are unchanged; groups replaces membership when present.
type UpdateUserRequest struct {
	Username       *string   `json:"username" validate:"omitempty,max=150"`
	Email          *string   `json:"email" validate:"omitempty,email,max=254"`
	FirstNames     *string   `json:"first_names" validate:"omitempty,max=150"`
	LastNames      *string   `json:"last_names" validate:"omitempty,max=150"`
	EmployeeStatus *string   `json:"employee_status" validate:"omitempty,oneof=ACTIVE TERMED NEVER_EMPLOYED NON_REHIRABLE"`
	IsActive       *bool     `json:"is_active"`
	Groups         *[]string `json:"groups"`
}

// GroupRequest is the group form.
type GroupRequest struct {
	Name         string   `json:"name" validate:"required,max=150"`
	IsSupervisor bool     `json:"is_supervisor"`
	IsAdmin      bool     `json:"is_admin"`
	Permissions  []string `json:"permissions"`
}

// GroupResponse is a group with its permissions.
type GroupResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	IsSupervisor bool     `json:"is_supervisor"`
	IsAdmin      bool     `json:"is_admin"`
	Editable     bool     `json:"editable"`
	Permissions  []string `json:"permissions"`
}

// PermissionResponse is a catalog entry.
type PermissionResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// UpdatePersonRequest is the admin person edit.
type UpdatePersonRequest struct {
	FirstNames     *string `json:"first_names" validate:"omitempty,max=150"`
	LastNames      *string `json:"last_names" validate:"omitempty,max=150"`
	DisplayName    *string `json:"display_name" validate:"omitempty,max=300"`
	PrimaryPhone   *string `json:"primary_phone" validate:"omitempty,max=32"`
	SecondaryPhone *string `json:"secondary_phone" validate:"omitempty,max=32"`
	Email          *string `json:"email" validate:"omitempty,email,max=254"`
}

// PersonResponse is the canonical identity with its history.
type PersonResponse struct {
	ID               string                `json:"id"`
	DisplayName      string                `json:"display_name"`
	FirstNames       string                `json:"first_names"`
	LastNames        string                `json:"last_names"`
	PrimaryPhone     string                `json:"primary_phone,omitempty"`
	SecondaryPhone   *string               `json:"secondary_phone,omitempty"`
	Email            string                `json:"email,omitempty"`
	NationalIDType   string                `json:"national_id_type,omitempty"`
	NationalIDNumber string                `json:"national_id_number,omitempty"`
	NationalID       *NationalIDResponse   `json:"national_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	Applications     []ApplicationResponse `json:"applications,omitempty"`
}

// UserDetailResponse is an account as shown in the admin console.
type UserDetailResponse struct {
	UserResponse
	Profile *ProfileResponse `json:"profile,omitempty"`
}
