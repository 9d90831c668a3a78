package memory

import (
	"context"
	"sort"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type applicationRepo struct{ s *Store }

func copyApplication(a *domain.Application) domain.Application {
	cp := *a
	cp.LanguageIDs = append([]string(nil), a.LanguageIDs...)
	cp.PreviousCallCenterIDs = append([]string(nil), a.PreviousCallCenterIDs...)
	cp.AreaOfExpertiseIDs = append([]string(nil), a.AreaOfExpertiseIDs...)
	return cp
}

func (r *applicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.persons[app.PersonID]; !ok {
		return notFound("create application")
	}
	ensureID(&app.ID)
	if app.Status == "" {
		app.Status = domain.ApplicationStatusNew
	}
	app.AppliedAt = r.s.now()
	cp := copyApplication(app)
	r.s.applications[app.ID] = &cp
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.applications[id]
	if !ok {
		return nil, notFound("get application")
	}
	cp := copyApplication(a)
	return &cp, nil
}

func (r *applicationRepo) LatestForPerson(_ context.Context, personID string) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var latest *domain.Application
	for _, a := range r.s.applications {
		if a.PersonID != personID {
			continue
		}
		if latest == nil || a.AppliedAt.After(latest.AppliedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, notFound("latest application")
	}
	cp := copyApplication(latest)
	return &cp, nil
}

func (r *applicationRepo) List(_ context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Application
	for _, a := range r.s.applications {
		if filter.PersonID != "" && a.PersonID != filter.PersonID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, copyApplication(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *applicationRepo) UpdatePipeline(_ context.Context, id string, p domain.ApplicationPipeline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applications[id]
	if !ok {
		return notFound("update application pipeline")
	}
	a.Status = p.Status
	a.PreScreen = p.PreScreen
	a.HireIQ = p.HireIQ
	a.TSS = p.TSS
	a.HMInterview = p.HMInterview
	return nil
}
