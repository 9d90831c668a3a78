// Package identity decides which Person an application or registration belongs to.
//
// Resolution is split in two: Resolve only reads and returns a MatchResult, Commit
// persists a new Person when nothing matched. Matching priority is national ID,
// then primary phone, then the email of a linked account. Storage uniqueness on
// national ID and phone is the concurrency guard; a conflicting insert means a
// concurrent request won and the lookup is re-run.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// MatchKind records which rule resolved the person.
type MatchKind string

const (
	MatchNationalID MatchKind = "national_id"
	MatchPhone      MatchKind = "phone"
	MatchEmail      MatchKind = "email"
	MatchNone       MatchKind = "none"
)

// PersonStore is the subset of person storage the resolver reads and writes.
type PersonStore interface {
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	GetByNationalIDNumber(ctx context.Context, number string) (*domain.Person, error)
	GetByPrimaryPhone(ctx context.Context, phone string) (*domain.Person, error)
	GetByUserEmail(ctx context.Context, email string) (*domain.Person, error)
	Create(ctx context.Context, person *domain.Person) error
}

// NationalIDStore looks up identity documents.
type NationalIDStore interface {
	GetByNumber(ctx context.Context, number string) (*domain.NationalID, error)
	GetByPersonID(ctx context.Context, personID string) (*domain.NationalID, error)
}

// ApplicationHistory reports a person's latest application.
type ApplicationHistory interface {
	LatestForPerson(ctx context.Context, personID string) (*domain.Application, error)
}

// Input carries the identity fields of a submission. Raw values are normalized by Resolve.
type Input struct {
	FirstNames       string
	LastNames        string
	DisplayName      string
	PrimaryPhone     string
	SecondaryPhone   string
	NationalIDType   domain.NationalIDType
	NationalIDNumber string
	Email            string
	BirthDate        *time.Time
	Gender           domain.Gender
}

// MatchResult is the outcome of Resolve. Person is nil when Kind is MatchNone until Commit runs.
type MatchResult struct {
	Kind       MatchKind
	Person     *domain.Person
	NationalID *domain.NationalID
	// Created is set by Commit when it inserted the person.
	Created bool
	Input   Input
}

// Existing reports whether the match refers to a pre-existing person.
func (m MatchResult) Existing() bool {
	return m.Kind != MatchNone
}

// ValidationError lists malformed fields by name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return "invalid identity: " + strings.Join(parts, ", ")
}

// DuplicateApplicationError is returned when the person applied inside the cooldown window.
type DuplicateApplicationError struct {
	PersonID      string
	LastAppliedAt time.Time
	RetryAfter    time.Duration
}

func (e *DuplicateApplicationError) Error() string {
	return fmt.Sprintf("person %s applied at %s; retry after %s", e.PersonID, e.LastAppliedAt.Format(time.RFC3339), e.RetryAfter)
}

// Resolver implements the matching and cooldown rules.
type Resolver struct {
	persons  PersonStore
	natids   NationalIDStore
	history  ApplicationHistory
	cooldown time.Duration
	now      func() time.Time
}

// NewResolver builds a resolver. minDaysAllowed <= 0 disables the cooldown.
func NewResolver(persons PersonStore, natids NationalIDStore, history ApplicationHistory, minDaysAllowed int) *Resolver {
	return &Resolver{
		persons:  persons,
		natids:   natids,
		history:  history,
		cooldown: time.Duration(minDaysAllowed) * 24 * time.Hour,
		now:      time.Now,
	}
}

// WithClock returns a copy reading time from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	cp := *r
	cp.now = now
	return &cp
}

// Normalize validates and normalizes the identity fields.
func (in Input) Normalize(requirePhone bool) (Input, error) {
	out := in
	fields := map[string]string{}

	out.NationalIDNumber = domain.ReduceToAlphanum(in.NationalIDNumber)
	if out.NationalIDNumber == "" {
		fields["national_id_number"] = "must contain letters or digits"
	}
	if out.NationalIDType == "" {
		out.NationalIDType = domain.NationalIDTypeCedula
	}
	if !out.NationalIDType.Valid() {
		fields["national_id_type"] = "is invalid"
	}

	out.PrimaryPhone = domain.ReduceToAlphanum(in.PrimaryPhone)
	if out.PrimaryPhone == "" && (requirePhone || strings.TrimSpace(in.PrimaryPhone) != "") {
		fields["primary_phone"] = "must contain digits"
	}
	out.SecondaryPhone = domain.ReduceToAlphanum(in.SecondaryPhone)
	out.Email = domain.NormalizeEmail(in.Email)
	out.FirstNames = strings.TrimSpace(in.FirstNames)
	out.LastNames = strings.TrimSpace(in.LastNames)
	out.DisplayName = strings.TrimSpace(in.DisplayName)

	if len(fields) > 0 {
		return out, &ValidationError{Fields: fields}
	}
	return out, nil
}

// Resolve finds the person matching in without mutating storage.
func (r *Resolver) Resolve(ctx context.Context, in Input) (MatchResult, error) {
	in, err := in.Normalize(false)
	if err != nil {
		return MatchResult{}, err
	}
	return r.resolve(ctx, in)
}

func (r *Resolver) resolve(ctx context.Context, in Input) (MatchResult, error) {
	res := MatchResult{Kind: MatchNone, Input: in}

	record, err := r.natids.GetByNumber(ctx, in.NationalIDNumber)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return res, err
	}
	if record != nil && record.PersonID != nil {
		person, err := r.persons.GetByID(ctx, *record.PersonID)
		if err == nil {
			return r.matched(MatchNationalID, person, record, in), nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return res, err
		}
	}

	person, err := r.persons.GetByNationalIDNumber(ctx, in.NationalIDNumber)
	if err == nil {
		return r.withLinkedRecord(ctx, MatchNationalID, person, in)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return res, err
	}

	if in.PrimaryPhone != "" {
		person, err := r.persons.GetByPrimaryPhone(ctx, in.PrimaryPhone)
		if err == nil {
			return r.withLinkedRecord(ctx, MatchPhone, person, in)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return res, err
		}
	}

	if in.Email != "" {
		person, err := r.persons.GetByUserEmail(ctx, in.Email)
		if err == nil {
			return r.withLinkedRecord(ctx, MatchEmail, person, in)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return res, err
		}
	}

	return res, nil
}

func (r *Resolver) matched(kind MatchKind, person *domain.Person, record *domain.NationalID, in Input) MatchResult {
	return MatchResult{Kind: kind, Person: person, NationalID: record, Input: in}
}

func (r *Resolver) withLinkedRecord(ctx context.Context, kind MatchKind, person *domain.Person, in Input) (MatchResult, error) {
	record, err := r.natids.GetByPersonID(ctx, person.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return MatchResult{}, err
		}
		record = nil
	}
	return r.matched(kind, person, record, in), nil
}

// CheckCooldown rejects a match whose person applied less than the cooldown ago.
// An application exactly at the boundary is allowed.
func (r *Resolver) CheckCooldown(ctx context.Context, m MatchResult) error {
	if r.cooldown <= 0 || m.Person == nil {
		return nil
	}
	last, err := r.history.LatestForPerson(ctx, m.Person.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	cutoff := r.now().Add(-r.cooldown)
	if last.AppliedAt.After(cutoff) {
		return &DuplicateApplicationError{
			PersonID:      m.Person.ID,
			LastAppliedAt: last.AppliedAt,
			RetryAfter:    last.AppliedAt.Sub(cutoff),
		}
	}
	return nil
}

// Commit persists a new person for an unmatched result. Matched results are returned unchanged.
// When the insert loses a uniqueness race the lookup runs again and the winner is returned.
func (r *Resolver) Commit(ctx context.Context, m MatchResult) (MatchResult, error) {
	if m.Person != nil {
		return m, nil
	}
	in := m.Input
	person := &domain.Person{
		FirstNames:       in.FirstNames,
		LastNames:        in.LastNames,
		DisplayName:      in.DisplayName,
		PrimaryPhone:     in.PrimaryPhone,
		NationalIDType:   in.NationalIDType,
		NationalIDNumber: in.NationalIDNumber,
		Email:            in.Email,
		BirthDate:        in.BirthDate,
		Gender:           in.Gender,
	}
	if person.DisplayName == "" {
		person.DisplayName = domain.DefaultDisplayName(in.FirstNames, in.LastNames)
	}
	if in.SecondaryPhone != "" {
		secondary := in.SecondaryPhone
		person.SecondaryPhone = &secondary
	}

	err := r.persons.Create(ctx, person)
	if err == nil {
		m.Person = person
		m.Created = true
		return m, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return m, err
	}

	again, rerr := r.resolve(ctx, in)
	if rerr != nil {
		return m, rerr
	}
	if again.Person == nil {
		return m, fmt.Errorf("person conflict without a matching record: %w", err)
	}
	return again, nil
}

// ResolveOrCreate resolves in and commits a new person when needed. No cooldown applies.
func (r *Resolver) ResolveOrCreate(ctx context.Context, in Input) (MatchResult, error) {
	m, err := r.Resolve(ctx, in)
	if err != nil {
		return m, err
	}
	return r.Commit(ctx, m)
}

// ResolveForApplication is the intake path: phone is required and the cooldown is enforced
// before any person is created.
func (r *Resolver) ResolveForApplication(ctx context.Context, in Input) (MatchResult, error) {
	in, err := in.Normalize(true)
	if err != nil {
		return MatchResult{}, err
	}
	m, err := r.resolve(ctx, in)
	if err != nil {
		return m, err
	}
	if err := r.CheckCooldown(ctx, m); err != nil {
		return m, err
	}
	committed, err := r.Commit(ctx, m)
	if err != nil {
		return committed, err
	}
	if !committed.Created && !m.Existing() {
		if err := r.CheckCooldown(ctx, committed); err != nil {
			return committed, err
		}
	}
	return committed, nil
}
