package dto

import "time"

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	FirstNames       string `json:"first_names" validate:"required,max=150"`
	LastNames        string `json:"last_names" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email,max=254"`
	Username         string `json:"username" validate:"required,max=150"`
	BirthDate        string `json:"birth_date" validate:"required"`
	NationalIDType   string `json:"national_id_type" validate:"omitempty,oneof=CEDULA PASSPORT SSN"`
	NationalIDNumber string `json:"national_id_number" validate:"required,max=32"`
	AcceptedTOS      bool   `json:"accepted_tos"`
	Password1        string `json:"password1" validate:"required"`
	Password2        string `json:"password2" validate:"required"`
}

// LoginRequest accepts an email or a username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordResetRequest starts the emailed reset flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SetPasswordRequest is posted to the revalidated reset link.
type SetPasswordRequest struct {
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// PasswordChangeRequest payload.
type PasswordChangeRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

// ProfileUpdateRequest payload. Omitted fields are unchanged.
type ProfileUpdateRequest struct {
	Gender *string `json:"gender" validate:"omitempty,oneof=M F N"`
	Bio    *string `json:"bio" validate:"omitempty,max=2000"`
}

// PictureUploadRequest asks for a presigned upload URL.
type PictureUploadRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

// PictureUploadResponse is a presigned PUT.
type PictureUploadResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GroupSummary is a group reference inside user payloads.
type GroupSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsSupervisor bool   `json:"is_supervisor"`
	IsAdmin      bool   `json:"is_admin"`
}

// UserResponse is the account representation.
type UserResponse struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	FirstNames     string         `json:"first_names"`
	LastNames      string         `json:"last_names"`
	FullName       string         `json:"full_name"`
	BirthDate      *string        `json:"birth_date,omitempty"`
	IsActive       bool           `json:"is_active"`
	IsVerified     bool           `json:"is_verified"`
	EmployeeStatus string         `json:"employee_status"`
	PersonID       *string        `json:"person_id,omitempty"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	Groups         []GroupSummary `json:"groups"`
}

// ProfileResponse is the profile representation.
type ProfileResponse struct {
	Gender     string `json:"gender,omitempty"`
	Bio        string `json:"bio"`
	PictureKey string `json:"picture_key,omitempty"`
}

// NationalIDResponse shows the formatted document number.
type NationalIDResponse struct {
	Type      string `json:"type"`
	TypeLabel string `json:"type_label"`
	Number    string `json:"number"`
}

// AccountResponse is the signed-in user's view of themselves.
type AccountResponse struct {
	User       UserResponse        `json:"user"`
	Profile    ProfileResponse     `json:"profile"`
	NationalID *NationalIDResponse `json:"national_id,omitempty"`
}

// PublicProfileResponse is visible to any signed-in user.
type PublicProfileResponse struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Gender     string `json:"gender,omitempty"`
	Bio        string `json:"bio"`
	PictureKey string `json:"picture_key,omitempty"`
}

// LinkResponse is rendered by the emailed link flows when no redirect is issued.
type LinkResponse struct {
	ValidLink bool   `json:"validlink"`
	Title     string `json:"title"`
	Username  string `json:"username,omitempty"`
}
