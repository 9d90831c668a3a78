package memory

import (
	"context"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type nationalIDRepo struct{ s *Store }

func (r *nationalIDRepo) Create(_ context.Context, record *domain.NationalID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.nationalIDs {
		if other.Number == record.Number {
			return conflict("create national id", "national_ids_id_number_key")
		}
		if record.UserID != nil && other.UserID != nil && *other.UserID == *record.UserID {
			return conflict("create national id", "national_ids_user_id_key")
		}
	}
	ensureID(&record.ID)
	cp := *record
	r.s.nationalIDs[record.ID] = &cp
	return nil
}

func (r *nationalIDRepo) find(op string, match func(*domain.NationalID) bool) (*domain.NationalID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.nationalIDs {
		if match(rec) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, notFound(op)
}

func (r *nationalIDRepo) GetByNumber(_ context.Context, number string) (*domain.NationalID, error) {
	return r.find("get national id", func(rec *domain.NationalID) bool { return rec.Number == number })
}

func (r *nationalIDRepo) GetByPersonID(_ context.Context, personID string) (*domain.NationalID, error) {
	return r.find("get national id by person", func(rec *domain.NationalID) bool {
		return rec.PersonID != nil && *rec.PersonID == personID
	})
}

func (r *nationalIDRepo) GetByUserID(_ context.Context, userID string) (*domain.NationalID, error) {
	return r.find("get national id by user", func(rec *domain.NationalID) bool {
		return rec.UserID != nil && *rec.UserID == userID
	})
}

func (r *nationalIDRepo) LinkPerson(_ context.Context, id, personID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.nationalIDs[id]
	if !ok {
		return notFound("link national id")
	}
	rec.PersonID = &personID
	return nil
}
