package memory

import (
	"context"
	"sort"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type groupRepo struct{ s *Store }

func copyGroup(g *domain.Group) domain.Group {
	cp := *g
	cp.Permissions = append([]domain.Permission(nil), g.Permissions...)
	return cp
}

func (r *groupRepo) byName(name string) *domain.Group {
	for _, g := range r.s.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (r *groupRepo) Create(_ context.Context, group *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.byName(group.Name) != nil {
		return conflict("create group", "groups_name_key")
	}
	ensureID(&group.ID)
	cp := copyGroup(group)
	r.s.groups[group.ID] = &cp
	return nil
}

func (r *groupRepo) Update(_ context.Context, group *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[group.ID]; !ok {
		return notFound("update group")
	}
	if other := r.byName(group.Name); other != nil && other.ID != group.ID {
		return conflict("update group", "groups_name_key")
	}
	cp := copyGroup(group)
	r.s.groups[group.ID] = &cp
	return nil
}

func (r *groupRepo) GetByID(_ context.Context, id string) (*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, notFound("get group")
	}
	cp := copyGroup(g)
	return &cp, nil
}

func (r *groupRepo) GetByName(_ context.Context, name string) (*domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g := r.byName(name)
	if g == nil {
		return nil, notFound("get group by name")
	}
	cp := copyGroup(g)
	return &cp, nil
}

func (r *groupRepo) List(_ context.Context) ([]domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		out = append(out, copyGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *groupRepo) Ensure(_ context.Context, group *domain.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing := r.byName(group.Name); existing != nil {
		group.ID = existing.ID
	} else {
		ensureID(&group.ID)
	}
	cp := copyGroup(group)
	r.s.groups[group.ID] = &cp
	return nil
}
