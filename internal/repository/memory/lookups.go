package memory

import (
	"context"
	"sort"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type lookupRepo struct{ s *Store }

func (r *lookupRepo) Create(_ context.Context, item *domain.LookupItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.lookups {
		if other.Kind == item.Kind && other.Name == item.Name {
			return conflict("create lookup", "lookup_items_kind_name_key")
		}
	}
	ensureID(&item.ID)
	cp := *item
	r.s.lookups[item.ID] = &cp
	return nil
}

func (r *lookupRepo) Update(_ context.Context, item *domain.LookupItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.lookups[item.ID]
	if !ok || existing.Kind != item.Kind {
		return notFound("update lookup")
	}
	for id, other := range r.s.lookups {
		if id != item.ID && other.Kind == item.Kind && other.Name == item.Name {
			return conflict("update lookup", "lookup_items_kind_name_key")
		}
	}
	cp := *item
	r.s.lookups[item.ID] = &cp
	return nil
}

func (r *lookupRepo) GetByID(_ context.Context, id string) (*domain.LookupItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.lookups[id]
	if !ok {
		return nil, notFound("get lookup")
	}
	cp := *item
	return &cp, nil
}

func (r *lookupRepo) ListByKind(_ context.Context, kind domain.LookupKind, displayedOnly bool) ([]domain.LookupItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.LookupItem
	for _, item := range r.s.lookups {
		if item.Kind != kind || (displayedOnly && !item.DisplayInForm) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *lookupRepo) GetMany(_ context.Context, kind domain.LookupKind, ids []string) ([]domain.LookupItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.LookupItem
	for _, id := range ids {
		if item, ok := r.s.lookups[id]; ok && item.Kind == kind {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
