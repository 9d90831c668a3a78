package domain

import "time"

// ApplicationStatus is the pipeline state managed by recruiters.
type ApplicationStatus string

const (
	ApplicationStatusNew        ApplicationStatus = "NEW"
	ApplicationStatusInProgress ApplicationStatus = "IN_PROGRESS"
	ApplicationStatusHired      ApplicationStatus = "HIRED"
	ApplicationStatusRejected   ApplicationStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusNew, ApplicationStatusInProgress, ApplicationStatusHired, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is one intake form submission.
type Application struct {
	ID                    string
	PersonID              string
	NationalIDRecordID    *string
	FirstNames            string
	LastNames             string
	PrimaryPhone          string
	SecondaryPhone        *string
	Email                 string
	BirthDate             *time.Time
	LivedInUSA            bool
	NationalIDType        NationalIDType
	NationalIDNumber      string
	Gender                Gender
	AddressLineOne        string
	AddressLineTwo        string
	CityTownID            *string
	ActiveStudies         bool
	Career                string
	Institution           string
	CurrentlyEmployed     bool
	CurrentEmployer       string
	PreviousCallCenterXP  bool
	LanguageIDs           []string
	PreviousCallCenterIDs []string
	AreaOfExpertiseIDs    []string
	Status                ApplicationStatus
	PreScreen             bool
	HireIQ                *int
	TSS                   bool
	HMInterview           bool
	AppliedAt             time.Time
}

// ApplicationPipeline carries the recruiter managed fields.
type ApplicationPipeline struct {
	Status      ApplicationStatus `json:"status"`
	PreScreen   bool              `json:"pre_screen"`
	HireIQ      *int              `json:"hire_iq,omitempty"`
	TSS         bool              `json:"tss"`
	HMInterview bool              `json:"hm_interview"`
}

// ApplicationFilter narrows admin listings.
type ApplicationFilter struct {
	PersonID string
	Status   ApplicationStatus
	Limit    int
	Offset   int
}
