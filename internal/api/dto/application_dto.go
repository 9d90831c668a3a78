package dto

import "time"

// SubmitApplicationRequest is the public intake form.
type SubmitApplicationRequest struct {
	FirstNames            string   `json:"first_names" validate:"required,max=150"`
	LastNames             string   `json:"last_names" validate:"required,max=150"`
	PrimaryPhone          string   `json:"primary_phone" validate:"required,max=32"`
	SecondaryPhone        string   `json:"secondary_phone" validate:"omitempty,max=32"`
	Email                 string   `json:"email" validate:"omitempty,email,max=254"`
	BirthDate             string   `json:"birth_date"`
	LivedInUSA            bool     `json:"lived_in_usa"`
	NationalIDType        string   `json:"national_id_type" validate:"omitempty,oneof=CEDULA PASSPORT SSN"`
	NationalIDNumber      string   `json:"national_id_number" validate:"required,max=32"`
	Gender                string   `json:"gender" validate:"omitempty,oneof=M F N"`
	AddressLineOne        string   `json:"address_line_one" validate:"max=255"`
	AddressLineTwo        string   `json:"address_line_two" validate:"max=255"`
	CityTownID            string   `json:"city_town"`
	ActiveStudies         bool     `json:"active_studies"`
	Career                string   `json:"career" validate:"max=150"`
	Institution           string   `json:"institution" validate:"max=150"`
	CurrentlyEmployed     bool     `json:"currently_employed"`
	CurrentEmployer       string   `json:"current_employer" validate:"max=150"`
	PreviousCallCenterXP  bool     `json:"previous_call_center_experience"`
	LanguageIDs           []string `json:"languages" validate:"max=20"`
	PreviousCallCenterIDs []string `json:"previous_call_centers" validate:"max=20"`
	AreaOfExpertiseIDs    []string `json:"areas_of_expertise" validate:"max=20"`
}

// ApplicationResponse is the stored submission.
type ApplicationResponse struct {
	ID                    string    `json:"id"`
	PersonID              string    `json:"person_id"`
	FirstNames            string    `json:"first_names"`
	LastNames             string    `json:"last_names"`
	PrimaryPhone          string    `json:"primary_phone"`
	SecondaryPhone        *string   `json:"secondary_phone,omitempty"`
	Email                 string    `json:"email,omitempty"`
	BirthDate             *string   `json:"birth_date,omitempty"`
	LivedInUSA            bool      `json:"lived_in_usa"`
	NationalIDType        string    `json:"national_id_type"`
	NationalIDNumber      string    `json:"national_id_number"`
	Gender                string    `json:"gender,omitempty"`
	AddressLineOne        string    `json:"address_line_one,omitempty"`
	AddressLineTwo        string    `json:"address_line_two,omitempty"`
	CityTownID            *string   `json:"city_town,omitempty"`
	ActiveStudies         bool      `json:"active_studies"`
	Career                string    `json:"career,omitempty"`
	Institution           string    `json:"institution,omitempty"`
	CurrentlyEmployed     bool      `json:"currently_employed"`
	CurrentEmployer       string    `json:"current_employer,omitempty"`
	PreviousCallCenterXP  bool      `json:"previous_call_center_experience"`
	LanguageIDs           []string  `json:"languages"`
	PreviousCallCenterIDs []string  `json:"previous_call_centers"`
	AreaOfExpertiseIDs    []string  `json:"areas_of_expertise"`
	Status                string    `json:"status"`
	PreScreen             bool      `json:"pre_screen"`
	HireIQ                *int      `json:"hire_iq,omitempty"`
	TSS                   bool      `json:"tss"`
	HMInterview           bool      `json:"hm_interview"`
	AppliedAt             time.Time `json:"applied_at"`
}

// SubmitApplicationResponse reports how the applicant was matched.
type SubmitApplicationResponse struct {
	Application ApplicationResponse `json:"application"`
	Match       string              `json:"match,omitempty"`
	Replayed    bool                `json:"replayed"`
}

// PipelineUpdateRequest carries the recruiter managed fields.
type PipelineUpdateRequest struct {
	Status      string `json:"status" validate:"required,oneof=NEW IN_PROGRESS HIRED REJECTED"`
	PreScreen   bool   `json:"pre_screen"`
	HireIQ      *int   `json:"hire_iq" validate:"omitempty,min=0,max=100"`
	TSS         bool   `json:"tss"`
	HMInterview bool   `json:"hm_interview"`
}

// LookupItemResponse is one support table row.
type LookupItemResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name,omitempty"`
	DisplayInForm bool   `json:"display_in_form"`
}

// LookupItemRequest creates or updates a support table row.
type LookupItemRequest struct {
	Name          string `json:"name" validate:"required,max=150"`
	ShortName     string `json:"short_name" validate:"max=32"`
	DisplayInForm bool   `json:"display_in_form"`
}

// PipelineResponse is a snapshot of the recruiter managed fields.
type PipelineResponse struct {
	Status      string `json:"status"`
	PreScreen   bool   `json:"pre_screen"`
	HireIQ      *int   `json:"hire_iq,omitempty"`
	TSS         bool   `json:"tss"`
	HMInterview bool   `json:"hm_interview"`
}

// ApplicationHistoryResponse is one pipeline change.
type ApplicationHistoryResponse struct {
	ID          string           `json:"id"`
	ChangedByID *string          `json:"changed_by_id,omitempty"`
	OldValue    PipelineResponse `json:"old_value"`
	NewValue    PipelineResponse `json:"new_value"`
	CreatedAt   time.Time        `json:"created_at"`
}
