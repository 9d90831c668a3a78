package memory

import (
	"context"
	"sort"

	"github.com/hirelane/recruitment-service/internal/domain"
)

type personRepo struct{ s *Store }

func (r *personRepo) checkUnique(op string, p *domain.Person) error {
	for id, other := range r.s.persons {
		if id == p.ID {
			continue
		}
		if p.NationalIDNumber != "" && other.NationalIDNumber == p.NationalIDNumber {
			return conflict(op, "persons_national_id_number_key")
		}
		if p.PrimaryPhone != "" && other.PrimaryPhone == p.PrimaryPhone {
			return conflict(op, "persons_primary_phone_key")
		}
	}
	return nil
}

func (r *personRepo) Create(_ context.Context, person *domain.Person) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&person.ID)
	if err := r.checkUnique("create person", person); err != nil {
		return err
	}
	person.CreatedAt = r.s.now()
	person.UpdatedAt = person.CreatedAt
	cp := *person
	r.s.persons[person.ID] = &cp
	return nil
}

func (r *personRepo) Update(_ context.Context, person *domain.Person) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.persons[person.ID]
	if !ok {
		return notFound("update person")
	}
	if err := r.checkUnique("update person", person); err != nil {
		return err
	}
	cp := *person
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = r.s.now()
	r.s.persons[person.ID] = &cp
	return nil
}

func (r *personRepo) find(op string, match func(*domain.Person) bool) (*domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.persons {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound(op)
}

func (r *personRepo) GetByID(_ context.Context, id string) (*domain.Person, error) {
	return r.find("get person", func(p *domain.Person) bool { return p.ID == id })
}

func (r *personRepo) GetByNationalIDNumber(_ context.Context, number string) (*domain.Person, error) {
	if number == "" {
		return nil, notFound("get person by national id")
	}
	return r.find("get person by national id", func(p *domain.Person) bool { return p.NationalIDNumber == number })
}

func (r *personRepo) GetByPrimaryPhone(_ context.Context, phone string) (*domain.Person, error) {
	if phone == "" {
		return nil, notFound("get person by phone")
	}
	return r.find("get person by phone", func(p *domain.Person) bool { return p.PrimaryPhone == phone })
}

func (r *personRepo) GetByUserEmail(_ context.Context, email string) (*domain.Person, error) {
	r.s.mu.RLock()
	user, err := r.s.userByEmail(email)
	r.s.mu.RUnlock()
	if err != nil || user.PersonID == nil {
		return nil, notFound("get person by user email")
	}
	personID := *user.PersonID
	return r.find("get person by user email", func(p *domain.Person) bool { return p.ID == personID })
}

func (r *personRepo) List(_ context.Context, limit, offset int) ([]domain.Person, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Person, 0, len(r.s.persons))
	for _, p := range r.s.persons {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}
