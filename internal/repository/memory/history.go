package memory

import (
	"context"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, entry *domain.ApplicationHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.applications[entry.ApplicationID]; !ok {
		return notFound("create application history")
	}
	ensureID(&entry.ID)
	entry.CreatedAt = r.s.now()
	r.s.history[entry.ApplicationID] = append(r.s.history[entry.ApplicationID], *entry)
	return nil
}

func (r *historyRepo) ListByApplication(_ context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.ApplicationHistory(nil), r.s.history[applicationID]...), nil
}
