package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/repository/memory"
)

type ResolverSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	clock    time.Time
	resolver *Resolver
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.clock = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return s.clock }
	s.store.SetClock(now)
	s.resolver = NewResolver(s.store.Persons(), s.store.NationalIDs(), s.store.Applications(), 30).WithClock(now)
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) existingPerson() *domain.Person {
	p := &domain.Person{
		FirstNames:       "Pedro",
		LastNames:        "Perez",
		PrimaryPhone:     "8095551234",
		NationalIDType:   domain.NationalIDTypeCedula,
		NationalIDNumber: "12345678901",
		Email:            "pedro@example.com",
	}
	s.Require().NoError(s.store.Persons().Create(s.ctx, p))
	return p
}

func (s *ResolverSuite) apply(personID string) {
	s.Require().NoError(s.store.Applications().Create(s.ctx, &domain.Application{PersonID: personID}))
}

func (s *ResolverSuite) countPersons() int {
	persons, err := s.store.Persons().List(s.ctx, 200, 0)
	s.Require().NoError(err)
	return len(persons)
}

func (s *ResolverSuite) TestNationalIDWinsOverDifferentPhone() {
	p := s.existingPerson()

	m, err := s.resolver.ResolveForApplication(s.ctx, Input{
		FirstNames:       "Pedro",
		LastNames:        "Perez",
		PrimaryPhone:     "809-999-8888",
		NationalIDNumber: "123-4567890-1",
	})
	s.Require().NoError(err)
	s.Equal(MatchNationalID, m.Kind)
	s.Equal(p.ID, m.Person.ID)
	s.False(m.Created)
	s.Equal(1, s.countPersons())
}

func (s *ResolverSuite) TestNationalIDRecordOwnerIsPreferred() {
	owner := &domain.Person{FirstNames: "Owner", PrimaryPhone: "8091111111"}
	s.Require().NoError(s.store.Persons().Create(s.ctx, owner))
	record := &domain.NationalID{Type: domain.NationalIDTypePassport, Number: "AB12345", PersonID: &owner.ID}
	s.Require().NoError(s.store.NationalIDs().Create(s.ctx, record))

	m, err := s.resolver.Resolve(s.ctx, Input{NationalIDType: domain.NationalIDTypePassport, NationalIDNumber: "AB-12345", PrimaryPhone: "8091111111"})
	s.Require().NoError(err)
	s.Equal(MatchNationalID, m.Kind)
	s.Equal(owner.ID, m.Person.ID)
	s.Require().NotNil(m.NationalID)
	s.Equal(record.ID, m.NationalID.ID)
}

func (s *ResolverSuite) TestPhoneMatch() {
	p := s.existingPerson()
	record := &domain.NationalID{Type: domain.NationalIDTypeCedula, Number: "12345678901", PersonID: &p.ID}
	s.Require().NoError(s.store.NationalIDs().Create(s.ctx, record))

	m, err := s.resolver.Resolve(s.ctx, Input{NationalIDNumber: "00000000000", PrimaryPhone: "(809) 555-1234"})
	s.Require().NoError(err)
	s.Equal(MatchPhone, m.Kind)
	s.Equal(p.ID, m.Person.ID)
	s.Require().NotNil(m.NationalID)
	s.Equal(record.ID, m.NationalID.ID)
}

func (s *ResolverSuite) TestEmailMatchThroughLinkedAccount() {
	p := &domain.Person{FirstNames: "Lia"}
	s.Require().NoError(s.store.Persons().Create(s.ctx, p))
	u := &domain.User{Username: "lia", Email: "lia@example.com", PersonID: &p.ID}
	s.Require().NoError(s.store.Users().Create(s.ctx, u))

	m, err := s.resolver.Resolve(s.ctx, Input{NationalIDNumber: "55555555555", PrimaryPhone: "8097777777", Email: "LIA@example.com"})
	s.Require().NoError(err)
	s.Equal(MatchEmail, m.Kind)
	s.Equal(p.ID, m.Person.ID)
	s.Nil(m.NationalID)
}

func (s *ResolverSuite) TestResolveIsPure() {
	m, err := s.resolver.Resolve(s.ctx, Input{FirstNames: "New", LastNames: "Comer", NationalIDNumber: "222", PrimaryPhone: "333"})
	s.Require().NoError(err)
	s.Equal(MatchNone, m.Kind)
	s.Nil(m.Person)
	s.Equal(0, s.countPersons())
}

func (s *ResolverSuite) TestNoMatchCreatesExactlyOnePerson() {
	in := Input{FirstNames: "New", LastNames: "Comer", NationalIDNumber: "402-1234567-8", PrimaryPhone: "829.111.2222", SecondaryPhone: "829-333-4444"}

	m, err := s.resolver.ResolveForApplication(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(MatchNone, m.Kind)
	s.True(m.Created)
	s.Equal("New Comer", m.Person.DisplayName)
	s.Equal("40212345678", m.Person.NationalIDNumber)
	s.Equal("8291112222", m.Person.PrimaryPhone)
	s.Require().NotNil(m.Person.SecondaryPhone)
	s.Equal("8293334444", *m.Person.SecondaryPhone)
	s.Equal(1, s.countPersons())

	again, err := s.resolver.ResolveOrCreate(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(MatchNationalID, again.Kind)
	s.Equal(m.Person.ID, again.Person.ID)
	s.Equal(1, s.countPersons())
}

func (s *ResolverSuite) TestCooldownRejectsRecentApplication() {
	p := s.existingPerson()
	s.apply(p.ID)

	s.clock = s.clock.Add(10 * 24 * time.Hour)
	_, err := s.resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "12345678901", PrimaryPhone: "8095551234"})

	var dup *DuplicateApplicationError
	s.Require().True(errors.As(err, &dup))
	s.Equal(p.ID, dup.PersonID)
	s.Equal(20*24*time.Hour, dup.RetryAfter)
}

func (s *ResolverSuite) TestCooldownBoundaryIsAllowed() {
	p := s.existingPerson()
	s.apply(p.ID)

	s.clock = s.clock.Add(30 * 24 * time.Hour)
	m, err := s.resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "12345678901", PrimaryPhone: "8095551234"})
	s.Require().NoError(err)
	s.Equal(p.ID, m.Person.ID)

	s.clock = s.clock.Add(-time.Second)
	_, err = s.resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "12345678901", PrimaryPhone: "8095551234"})
	var dup *DuplicateApplicationError
	s.True(errors.As(err, &dup))
}

func (s *ResolverSuite) TestCooldownDisabled() {
	p := s.existingPerson()
	s.apply(p.ID)
	resolver := NewResolver(s.store.Persons(), s.store.NationalIDs(), s.store.Applications(), 0)

	_, err := resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "12345678901", PrimaryPhone: "8095551234"})
	s.NoError(err)
}

func (s *ResolverSuite) TestValidation() {
	_, err := s.resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "---", PrimaryPhone: "(--)"})
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Contains(verr.Fields, "national_id_number")
	s.Contains(verr.Fields, "primary_phone")

	_, err = s.resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "123"})
	s.Require().True(errors.As(err, &verr))
	s.Contains(verr.Fields, "primary_phone")

	_, err = s.resolver.Resolve(s.ctx, Input{NationalIDNumber: "123", NationalIDType: "DRIVER"})
	s.Require().True(errors.As(err, &verr))
	s.Contains(verr.Fields, "national_id_type")

	s.Equal(0, s.countPersons())
}

// racingPersons inserts a competing person right before the resolver's insert.
type racingPersons struct {
	PersonStore
	competitor *domain.Person
	raced      bool
}

func (r *racingPersons) Create(ctx context.Context, p *domain.Person) error {
	if !r.raced {
		r.raced = true
		if err := r.PersonStore.Create(ctx, r.competitor); err != nil {
			return err
		}
	}
	return r.PersonStore.Create(ctx, p)
}

func (s *ResolverSuite) TestCommitRecoversFromUniqueRace() {
	competitor := &domain.Person{FirstNames: "Fast", NationalIDNumber: "77777777777", PrimaryPhone: "8090001111"}
	racing := &racingPersons{PersonStore: s.store.Persons(), competitor: competitor}
	resolver := NewResolver(racing, s.store.NationalIDs(), s.store.Applications(), 30)

	m, err := resolver.ResolveForApplication(s.ctx, Input{FirstNames: "Slow", NationalIDNumber: "777-7777777-7", PrimaryPhone: "8092223333"})
	s.Require().NoError(err)
	s.Equal(competitor.ID, m.Person.ID)
	s.Equal(MatchNationalID, m.Kind)
	s.False(m.Created)
	s.Equal(1, s.countPersons())
}

func (s *ResolverSuite) TestCommitRaceStillEnforcesCooldown() {
	competitor := &domain.Person{FirstNames: "Fast", NationalIDNumber: "77777777777", PrimaryPhone: "8090001111"}
	racing := &racingPersons{PersonStore: s.store.Persons(), competitor: competitor}
	resolver := NewResolver(racing, s.store.NationalIDs(), &appendingHistory{store: s.store, competitor: competitor}, 30)

	_, err := resolver.ResolveForApplication(s.ctx, Input{NationalIDNumber: "77777777777", PrimaryPhone: "8092223333"})
	var dup *DuplicateApplicationError
	s.True(errors.As(err, &dup))
}

// appendingHistory reports that the competitor applied just now once it exists.
type appendingHistory struct {
	store      *memory.Store
	competitor *domain.Person
}

func (h *appendingHistory) LatestForPerson(ctx context.Context, personID string) (*domain.Application, error) {
	if h.competitor.ID != "" && personID == h.competitor.ID {
		return &domain.Application{PersonID: personID, AppliedAt: time.Now()}, nil
	}
	return h.store.Applications().LatestForPerson(ctx, personID)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := Input{NationalIDNumber: " 123-4567890-1 ", PrimaryPhone: "+1 (809) 555-1234", Email: " X@Y.com "}
	once, err := in.Normalize(true)
	require.NoError(t, err)
	twice, err := once.Normalize(true)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Equal(t, "12345678901", once.NationalIDNumber)
	assert.Equal(t, "18095551234", once.PrimaryPhone)
	assert.Equal(t, "x@y.com", once.Email)
	assert.Equal(t, domain.NationalIDTypeCedula, once.NationalIDType)
}
