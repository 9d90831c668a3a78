// Package memory provides map backed repositories with the same uniqueness
// guarantees as the Postgres schema. The API server falls back to it when no
// database is configured and tests use it directly.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/repository"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// Store holds every table behind one lock.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]*domain.User
	userGroups   map[string][]string
	profiles     map[string]*domain.Profile
	groups       map[string]*domain.Group
	persons      map[string]*domain.Person
	nationalIDs  map[string]*domain.NationalID
	applications map[string]*domain.Application
	history      map[string][]domain.ApplicationHistory
	lookups      map[string]*domain.LookupItem
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:          time.Now,
		users:        map[string]*domain.User{},
		userGroups:   map[string][]string{},
		profiles:     map[string]*domain.Profile{},
		groups:       map[string]*domain.Group{},
		persons:      map[string]*domain.Person{},
		nationalIDs:  map[string]*domain.NationalID{},
		applications: map[string]*domain.Application{},
		history:      map[string][]domain.ApplicationHistory{},
		lookups:      map[string]*domain.LookupItem{},
	}
}

// SetClock overrides the timestamp source. Used by tests to place applications in time.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository               { return &userRepo{s} }
func (s *Store) Groups() repository.GroupRepository             { return &groupRepo{s} }
func (s *Store) Persons() repository.PersonRepository           { return &personRepo{s} }
func (s *Store) NationalIDs() repository.NationalIDRepository   { return &nationalIDRepo{s} }
func (s *Store) Applications() repository.ApplicationRepository { return &applicationRepo{s} }
func (s *Store) Lookups() repository.LookupRepository           { return &lookupRepo{s} }

func (s *Store) ApplicationHistory() repository.ApplicationHistoryRepository {
	return &historyRepo{s}
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
}

func conflict(op, constraint string) error {
	return fmt.Errorf("%s: %w (%s)", op, apperrors.ErrConflict, constraint)
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// userRepo

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := domain.NormalizeEmail(user.Email)
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return conflict("create user", "users_username_key")
		}
		if domain.NormalizeEmail(u.Email) == email {
			return conflict("create user", "users_email_lower_key")
		}
	}
	ensureID(&user.ID)
	if user.EmployeeStatus == "" {
		user.EmployeeStatus = domain.EmployeeStatusNeverEmployed
	}
	user.Email = email
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return notFound("update user")
	}
	email := domain.NormalizeEmail(user.Email)
	for id, u := range r.s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return conflict("update user", "users_username_key")
		}
		if domain.NormalizeEmail(u.Email) == email {
			return conflict("update user", "users_email_lower_key")
		}
	}
	cp := *user
	cp.Email = email
	cp.PasswordHash = existing.PasswordHash
	cp.LastLoginAt = existing.LastLoginAt
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = r.s.now()
	r.s.users[user.ID] = &cp
	user.UpdatedAt = cp.UpdatedAt
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("get user")
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.userByEmail(email)
}

func (s *Store) userByEmail(email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("get user by email")
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("get user by username")
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []domain.User
	for _, u := range r.s.users {
		if q != "" {
			haystack := strings.ToLower(u.Username + " " + u.Email + " " + u.FirstNames + " " + u.LastNames)
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), nil
}

func (r *userRepo) mutate(op, id string, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return notFound(op)
	}
	fn(u)
	return nil
}

func (r *userRepo) MarkVerified(_ context.Context, id string) error {
	return r.mutate("mark verified", id, func(u *domain.User) {
		u.IsVerified = true
		u.IsActive = true
		u.UpdatedAt = r.s.now()
	})
}

func (r *userRepo) SetPassword(_ context.Context, id, hash string) error {
	return r.mutate("set password", id, func(u *domain.User) {
		u.PasswordHash = hash
		u.UpdatedAt = r.s.now()
	})
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate("touch last login", id, func(u *domain.User) {
		u.LastLoginAt = &at
	})
}

func (r *userRepo) LinkPerson(_ context.Context, userID, personID string) error {
	return r.mutate("link person", userID, func(u *domain.User) {
		u.PersonID = &personID
		u.UpdatedAt = r.s.now()
	})
}

func (r *userRepo) SetGroups(_ context.Context, userID string, groupIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return notFound("set groups")
	}
	seen := map[string]struct{}{}
	var ids []string
	for _, id := range groupIDs {
		if _, ok := r.s.groups[id]; !ok {
			return notFound("set groups")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	r.s.userGroups[userID] = ids
	return nil
}

func (r *userRepo) GroupsForUser(_ context.Context, userID string) ([]domain.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Group
	for _, id := range r.s.userGroups[userID] {
		if g, ok := r.s.groups[id]; ok {
			out = append(out, copyGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *userRepo) GetProfile(_ context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, notFound("get profile")
	}
	cp := *p
	return &cp, nil
}

func (r *userRepo) UpsertProfile(_ context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[profile.UserID]; !ok {
		return notFound("upsert profile")
	}
	profile.UpdatedAt = r.s.now()
	cp := *profile
	r.s.profiles[profile.UserID] = &cp
	return nil
}
