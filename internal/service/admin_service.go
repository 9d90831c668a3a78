package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/repository"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// PasswordResetRequester sends the reset email used to hand a new account to its owner.
type PasswordResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) error
}

// UserDetail is an account with its groups.
type UserDetail struct {
	User    domain.User
	Groups  []domain.Group
	Profile *domain.Profile
}

// CreateUserInput is the admin console user form.
type CreateUserInput struct {
	Username       string
	Email          string
	FirstNames     string
	LastNames      string
	EmployeeStatus domain.EmployeeStatus
	GroupIDs       []string
	IsActive       bool
}

// UpdateUserInput replaces the editable account fields. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username       *string
	Email          *string
	FirstNames     *string
	LastNames      *string
	EmployeeStatus *domain.EmployeeStatus
	IsActive       *bool
	GroupIDs       []string
	SetGroups      bool
}

// GroupInput is the group form.
type GroupInput struct {
	Name         string
	IsSupervisor bool
	IsAdmin      bool
	Permissions  []domain.Permission
}

// PersonDetail is a person with their applications.
type PersonDetail struct {
	Person       domain.Person
	NationalID   *domain.NationalID
	Applications []domain.Application
}

// UpdatePersonInput is the admin person form. Nil fields are left unchanged; an empty
// SecondaryPhone clears it. National id fields belong to the national id record and are not editable here.
type UpdatePersonInput struct {
	FirstNames     *string
	LastNames      *string
	DisplayName    *string
	PrimaryPhone   *string
	SecondaryPhone *string
	Email          *string
}

// AdminService backs the admin console.
type AdminService struct {
	users        repository.UserRepository
	groups       repository.GroupRepository
	persons      repository.PersonRepository
	natids       repository.NationalIDRepository
	applications repository.ApplicationRepository
	resets       PasswordResetRequester
	bcryptCost   int
	logger       *zap.Logger
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	Users        repository.UserRepository
	Groups       repository.GroupRepository
	Persons      repository.PersonRepository
	NationalIDs  repository.NationalIDRepository
	Applications repository.ApplicationRepository
	Resets       PasswordResetRequester
	BcryptCost   int
	Logger       *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		users:        deps.Users,
		groups:       deps.Groups,
		persons:      deps.Persons,
		natids:       deps.NationalIDs,
		applications: deps.Applications,
		resets:       deps.Resets,
		bcryptCost:   deps.BcryptCost,
		logger:       logger,
	}
}

// SeedGroups creates or syncs the built-in groups. Safe to run repeatedly.
func (s *AdminService) SeedGroups(ctx context.Context) ([]domain.Group, error) {
	initial := domain.InitialGroups()
	for i := range initial {
		if err := s.groups.Ensure(ctx, &initial[i]); err != nil {
			return nil, err
		}
	}
	s.logger.Info("groups seeded", zap.Int("count", len(initial)))
	return initial, nil
}

// ListUsers returns accounts matching filter with their groups.
func (s *AdminService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]UserDetail, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]UserDetail, 0, len(users))
	for _, u := range users {
		groups, err := s.users.GroupsForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, UserDetail{User: u, Groups: groups})
	}
	return out, nil
}

// GetUser returns one account with groups and profile.
func (s *AdminService) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	groups, err := s.users.GroupsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &UserDetail{User: *user, Groups: groups}
	if profile, err := s.users.GetProfile(ctx, id); err == nil {
		detail.Profile = profile
	} else if !isNotFound(err) {
		return nil, err
	}
	return detail, nil
}

// CreateUser creates an account with a random password. Active accounts are emailed a reset link
// so the owner can choose a password.
func (s *AdminService) CreateUser(ctx context.Context, in CreateUserInput) (*UserDetail, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = domain.NormalizeEmail(in.Email)
	if in.EmployeeStatus == "" {
		in.EmployeeStatus = domain.EmployeeStatusNeverEmployed
	}

	errs := fieldErrors{}
	if in.Username == "" {
		errs.add("username", "is required")
	}
	if in.Email == "" {
		errs.add("email", "is required")
	}
	if strings.TrimSpace(in.FirstNames) == "" {
		errs.add("first_names", "is required")
	}
	if strings.TrimSpace(in.LastNames) == "" {
		errs.add("last_names", "is required")
	}
	if !in.EmployeeStatus.Valid() {
		errs.add("employee_status", "is not a valid choice")
	}
	if err := errs.err("user is invalid"); err != nil {
		return nil, err
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:       in.Username,
		Email:          in.Email,
		FirstNames:     strings.TrimSpace(in.FirstNames),
		LastNames:      strings.TrimSpace(in.LastNames),
		PasswordHash:   hash,
		IsActive:       in.IsActive,
		IsVerified:     in.IsActive,
		EmployeeStatus: in.EmployeeStatus,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("an account with this email or username already exists", nil)
		}
		return nil, err
	}
	if len(in.GroupIDs) > 0 {
		if err := s.setGroups(ctx, user.ID, in.GroupIDs); err != nil {
			return nil, err
		}
	}
	if user.IsActive && s.resets != nil {
		if err := s.resets.RequestPasswordReset(ctx, user.Email); err != nil {
			s.logger.Warn("send welcome reset link", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return s.GetUser(ctx, user.ID)
}

// UpdateUser applies in to the account.
func (s *AdminService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*UserDetail, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	errs := fieldErrors{}
	if in.Username != nil {
		if v := strings.TrimSpace(*in.Username); v != "" {
			user.Username = v
		} else {
			errs.add("username", "is required")
		}
	}
	if in.Email != nil {
		if v := domain.NormalizeEmail(*in.Email); v != "" {
			user.Email = v
		} else {
			errs.add("email", "is required")
		}
	}
	if in.FirstNames != nil {
		user.FirstNames = strings.TrimSpace(*in.FirstNames)
	}
	if in.LastNames != nil {
		user.LastNames = strings.TrimSpace(*in.LastNames)
	}
	if in.EmployeeStatus != nil {
		if in.EmployeeStatus.Valid() {
			user.EmployeeStatus = *in.EmployeeStatus
		} else {
			errs.add("employee_status", "is not a valid choice")
		}
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := errs.err("user is invalid"); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("an account with this email or username already exists", nil)
		}
		return nil, err
	}
	if in.SetGroups {
		if err := s.setGroups(ctx, id, in.GroupIDs); err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

func (s *AdminService) setGroups(ctx context.Context, userID string, groupIDs []string) error {
	if err := s.users.SetGroups(ctx, userID, groupIDs); err != nil {
		if isNotFound(err) {
			return apperrors.NewValidationError("user is invalid", map[string]any{"groups": "contains an unknown group"})
		}
		return err
	}
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ListGroups returns every group.
func (s *AdminService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

// GetGroup returns one group.
func (s *AdminService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("group", map[string]any{"id": id})
		}
		return nil, err
	}
	return group, nil
}

// CreateGroup adds a custom group.
func (s *AdminService) CreateGroup(ctx context.Context, in GroupInput) (*domain.Group, error) {
	group := &domain.Group{}
	if err := s.applyGroup(group, in); err != nil {
		return nil, err
	}
	if !group.Editable() {
		return nil, apperrors.NewConflict("a built-in group with this name already exists", map[string]any{"name": group.Name})
	}
	if err := s.groups.Create(ctx, group); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("a group with this name already exists", map[string]any{"name": group.Name})
		}
		return nil, err
	}
	return group, nil
}

// UpdateGroup edits a custom group. Built-in groups are read only.
func (s *AdminService) UpdateGroup(ctx context.Context, id string, in GroupInput) (*domain.Group, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !group.Editable() {
		return nil, apperrors.NewForbidden("built-in groups cannot be modified")
	}
	if err := s.applyGroup(group, in); err != nil {
		return nil, err
	}
	if !group.Editable() {
		return nil, apperrors.NewConflict("a built-in group with this name already exists", map[string]any{"name": group.Name})
	}
	if err := s.groups.Update(ctx, group); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("a group with this name already exists", map[string]any{"name": group.Name})
		}
		return nil, err
	}
	return group, nil
}

func (s *AdminService) applyGroup(group *domain.Group, in GroupInput) error {
	errs := fieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		errs.add("name", "is required")
	}
	perms := make([]domain.Permission, 0, len(in.Permissions))
	seen := map[domain.Permission]struct{}{}
	for _, p := range in.Permissions {
		if !p.Valid() {
			errs.add("permissions", "contains an unknown permission")
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	if err := errs.err("group is invalid"); err != nil {
		return err
	}
	group.Name = name
	group.IsSupervisor = in.IsSupervisor || in.IsAdmin
	group.IsAdmin = in.IsAdmin
	group.Permissions = perms
	return nil
}

// PermissionInfo describes one catalog entry.
type PermissionInfo struct {
	Code        domain.Permission `json:"code"`
	Description string            `json:"description"`
}

// Permissions returns the permission catalog.
func (s *AdminService) Permissions() []PermissionInfo {
	all := domain.AllPermissions()
	out := make([]PermissionInfo, 0, len(all))
	for _, p := range all {
		out = append(out, PermissionInfo{Code: p, Description: p.Description()})
	}
	return out
}

// ListPersons pages through known persons.
func (s *AdminService) ListPersons(ctx context.Context, limit, offset int) ([]domain.Person, error) {
	return s.persons.List(ctx, limit, offset)
}

// GetPerson returns a person with their national id record and application history.
func (s *AdminService) GetPerson(ctx context.Context, id string) (*PersonDetail, error) {
	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("person", map[string]any{"id": id})
		}
		return nil, err
	}
	detail := &PersonDetail{Person: *person}
	if rec, err := s.natids.GetByPersonID(ctx, id); err == nil {
		detail.NationalID = rec
	} else if !isNotFound(err) {
		return nil, err
	}
	apps, err := s.applications.List(ctx, domain.ApplicationFilter{PersonID: id, Limit: 200})
	if err != nil {
		return nil, err
	}
	detail.Applications = apps
	return detail, nil
}

// UpdatePerson applies an administrative edit. Contact fields are stored in the form the
// resolver matches on.
func (s *AdminService) UpdatePerson(ctx context.Context, id string, in UpdatePersonInput) (*PersonDetail, error) {
	person, err := s.persons.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.NewNotFound("person", map[string]any{"id": id})
		}
		return nil, err
	}
	errs := fieldErrors{}
	if in.FirstNames != nil {
		if v := strings.TrimSpace(*in.FirstNames); v != "" {
			person.FirstNames = v
		} else {
			errs.add("first_names", "is required")
		}
	}
	if in.LastNames != nil {
		if v := strings.TrimSpace(*in.LastNames); v != "" {
			person.LastNames = v
		} else {
			errs.add("last_names", "is required")
		}
	}
	if in.PrimaryPhone != nil {
		if v := domain.ReduceToAlphanum(*in.PrimaryPhone); v != "" {
			person.PrimaryPhone = v
		} else {
			errs.add("primary_phone", "is required")
		}
	}
	if in.SecondaryPhone != nil {
		if v := domain.ReduceToAlphanum(*in.SecondaryPhone); v != "" {
			person.SecondaryPhone = &v
		} else {
			person.SecondaryPhone = nil
		}
	}
	if in.Email != nil {
		person.Email = domain.NormalizeEmail(*in.Email)
	}
	if err := errs.err("person is invalid"); err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		person.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if person.DisplayName == "" {
		person.DisplayName = domain.DefaultDisplayName(person.FirstNames, person.LastNames)
	}
	if err := s.persons.Update(ctx, person); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflict("another person already uses this phone number", nil)
		}
		return nil, err
	}
	s.logger.Info("person updated", zap.String("person_id", person.ID))
	return s.GetPerson(ctx, id)
}
