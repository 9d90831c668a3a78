package domain

import "time"

// ApplicationHistory is an immutable audit entry written whenever a recruiter changes
// the pipeline of an application.
type ApplicationHistory struct {
	ID            string
	ApplicationID string
	ChangedByID   *string
	OldValue      ApplicationPipeline
	NewValue      ApplicationPipeline
	CreatedAt     time.Time
}

// Pipeline returns the recruiter managed fields of the application.
func (a *Application) Pipeline() ApplicationPipeline {
	return ApplicationPipeline{
		Status:      a.Status,
		PreScreen:   a.PreScreen,
		HireIQ:      a.HireIQ,
		TSS:         a.TSS,
		HMInterview: a.HMInterview,
	}
}
