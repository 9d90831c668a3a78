package handlers

import (
	"time"

	"github.com/hirelane/recruitment-service/internal/api/dto"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/service"
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func groupSummaries(groups []domain.Group) []dto.GroupSummary {
	out := make([]dto.GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.GroupSummary{ID: g.ID, Name: g.Name, IsSupervisor: g.IsSupervisor, IsAdmin: g.IsAdmin})
	}
	return out
}

func userResponse(u domain.User, groups []domain.Group) dto.UserResponse {
	return dto.UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstNames:     u.FirstNames,
		LastNames:      u.LastNames,
		FullName:       u.FullName(),
		BirthDate:      formatDate(u.BirthDate),
		IsActive:       u.IsActive,
		IsVerified:     u.IsVerified,
		EmployeeStatus: string(u.EmployeeStatus),
		PersonID:       u.PersonID,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		Groups:         groupSummaries(groups),
	}
}

func groupResponse(g domain.Group) dto.GroupResponse {
	perms := make([]string, 0, len(g.Permissions))
	for _, p := range g.Permissions {
		perms = append(perms, string(p))
	}
	return dto.GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		IsSupervisor: g.IsSupervisor,
		IsAdmin:      g.IsAdmin,
		Editable:     g.Editable(),
		Permissions:  perms,
	}
}

func profileResponse(p domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{Gender: string(p.Gender), Bio: p.Bio, PictureKey: p.PictureKey}
}

func nationalIDResponse(n *domain.NationalID) *dto.NationalIDResponse {
	if n == nil {
		return nil
	}
	return &dto.NationalIDResponse{Type: string(n.Type), TypeLabel: n.Type.Label(), Number: n.Formatted()}
}

func accountResponse(a *service.Account) dto.AccountResponse {
	return dto.AccountResponse{
		User:       userResponse(a.User, a.Groups),
		Profile:    profileResponse(a.Profile),
		NationalID: nationalIDResponse(a.NationalID),
	}
}

func applicationResponse(a domain.Application) dto.ApplicationResponse {
	return dto.ApplicationResponse{
		ID:                    a.ID,
		PersonID:              a.PersonID,
		FirstNames:            a.FirstNames,
		LastNames:             a.LastNames,
		PrimaryPhone:          a.PrimaryPhone,
		SecondaryPhone:        a.SecondaryPhone,
		Email:                 a.Email,
		BirthDate:             formatDate(a.BirthDate),
		LivedInUSA:            a.LivedInUSA,
		NationalIDType:        string(a.NationalIDType),
		NationalIDNumber:      a.NationalIDNumber,
		Gender:                string(a.Gender),
		AddressLineOne:        a.AddressLineOne,
		AddressLineTwo:        a.AddressLineTwo,
		CityTownID:            a.CityTownID,
		ActiveStudies:         a.ActiveStudies,
		Career:                a.Career,
		Institution:           a.Institution,
		CurrentlyEmployed:     a.CurrentlyEmployed,
		CurrentEmployer:       a.CurrentEmployer,
		PreviousCallCenterXP:  a.PreviousCallCenterXP,
		LanguageIDs:           nonNil(a.LanguageIDs),
		PreviousCallCenterIDs: nonNil(a.PreviousCallCenterIDs),
		AreaOfExpertiseIDs:    nonNil(a.AreaOfExpertiseIDs),
		Status:                string(a.Status),
		PreScreen:             a.PreScreen,
		HireIQ:                a.HireIQ,
		TSS:                   a.TSS,
		HMInterview:           a.HMInterview,
		AppliedAt:             a.AppliedAt,
	}
}

func applicationResponses(apps []domain.Application) []dto.ApplicationResponse {
	out := make([]dto.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, applicationResponse(a))
	}
	return out
}

func lookupResponse(item domain.LookupItem) dto.LookupItemResponse {
	return dto.LookupItemResponse{
		ID:            item.ID,
		Kind:          string(item.Kind),
		Name:          item.Name,
		ShortName:     item.ShortName,
		DisplayInForm: item.DisplayInForm,
	}
}

func lookupResponses(items []domain.LookupItem) []dto.LookupItemResponse {
	out := make([]dto.LookupItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, lookupResponse(item))
	}
	return out
}

func personResponse(p domain.Person) dto.PersonResponse {
	return dto.PersonResponse{
		ID:               p.ID,
		DisplayName:      p.DisplayName,
		FirstNames:       p.FirstNames,
		LastNames:        p.LastNames,
		PrimaryPhone:     p.PrimaryPhone,
		SecondaryPhone:   p.SecondaryPhone,
		Email:            p.Email,
		NationalIDType:   string(p.NationalIDType),
		NationalIDNumber: p.NationalIDNumber,
		CreatedAt:        p.CreatedAt,
	}
}

func userDetailResponse(d service.UserDetail) dto.UserDetailResponse {
	out := dto.UserDetailResponse{UserResponse: userResponse(d.User, d.Groups)}
	if d.Profile != nil {
		p := profileResponse(*d.Profile)
		out.Profile = &p
	}
	return out
}

func personDetailResponse(d *service.PersonDetail) dto.PersonResponse {
	out := personResponse(d.Person)
	out.NationalID = nationalIDResponse(d.NationalID)
	out.Applications = applicationResponses(d.Applications)
	return out
}

func pipelineResponse(p domain.ApplicationPipeline) dto.PipelineResponse {
	return dto.PipelineResponse{
		Status:      string(p.Status),
		PreScreen:   p.PreScreen,
		HireIQ:      p.HireIQ,
		TSS:         p.TSS,
		HMInterview: p.HMInterview,
	}
}

func historyResponses(entries []domain.ApplicationHistory) []dto.ApplicationHistoryResponse {
	out := make([]dto.ApplicationHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ApplicationHistoryResponse{
			ID:          e.ID,
			ChangedByID: e.ChangedByID,
			OldValue:    pipelineResponse(e.OldValue),
			NewValue:    pipelineResponse(e.NewValue),
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
