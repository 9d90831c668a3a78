package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hirelane/recruitment-service/internal/config"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/events"
	"github.com/hirelane/recruitment-service/internal/identity"
	"github.com/hirelane/recruitment-service/internal/repository/memory"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const testPassword = "Blue-Harbor-42"

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (l *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, 0, l.err
	}
	if l.counts == nil {
		l.counts = map[string]int64{}
	}
	l.counts[scope]++
	return l.counts[scope] <= limit, l.counts[scope], nil
}

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (r *fakeRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Duration{}
	}
	r.revoked[id] = ttl
	return nil
}

type memIdempotency struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{values: map[string]string{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, m.err
}

func (m *memIdempotency) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *memIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memIdempotency) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memIdempotency) IdempotencyKey(scope, id string) string {
	return scope + ":" + id
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func newEventLog(d events.Dispatcher) *eventLog {
	l := &eventLog{}
	for _, t := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserVerified,
		events.EventPasswordResetRequested,
		events.EventPasswordChanged,
		events.EventApplicationSubmitted,
	} {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.events = append(l.events, e)
			return nil
		})
	}
	return l
}

func (l *eventLog) ofType(t events.EventType) []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []events.Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type mapSession map[string]interface{}

func (s mapSession) Get(key string) interface{}      { return s[key] }
func (s mapSession) Set(key string, val interface{}) { s[key] = val }
func (s mapSession) Delete(key string)               { delete(s, key) }

func testConfig() config.Config {
	return config.Config{
		App: config.AppConfig{PublicURL: "https://jobs.example.com"},
		Auth: config.AuthConfig{
			JWTSecret:             "jwt-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
			TokenSecret:           "token-secret",
			VerifyTokenTTL:        72 * time.Hour,
			ResetTokenTTL:         24 * time.Hour,
			TokenBucket:           time.Minute,
			LoginMaxAttempts:      3,
			LoginAttemptWindow:    15 * time.Minute,
		},
		Accounts:     config.AccountsConfig{EnforceMinAge: true, MinimumAgeAllowed: 18},
		Applications: config.ApplicationsConfig{MinDaysAllowed: 30, IdempotencyTTL: time.Hour},
	}
}

type fixture struct {
	t        *testing.T
	ctx      context.Context
	clock    time.Time
	store    *memory.Store
	events   *eventLog
	limiter  *fakeLimiter
	revoker  *fakeRevoker
	idem     *memIdempotency
	auth     *AuthService
	apps     *ApplicationService
	admin    *AdminService
	lookups  *LookupService
	profiles *ProfileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		clock:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		store:   memory.NewStore(),
		limiter: &fakeLimiter{},
		revoker: &fakeRevoker{},
		idem:    newMemIdempotency(),
	}
	now := func() time.Time { return f.clock }
	f.store.SetClock(now)

	cfg := testConfig()
	dispatcher := events.NewInMemoryDispatcher()
	f.events = newEventLog(dispatcher)
	resolver := identity.NewResolver(f.store.Persons(), f.store.NationalIDs(), f.store.Applications(), cfg.Applications.MinDaysAllowed).WithClock(now)

	f.auth = NewAuthService(cfg, AuthDependencies{
		Users:       f.store.Users(),
		Groups:      f.store.Groups(),
		NationalIDs: f.store.NationalIDs(),
		Resolver:    resolver,
		Dispatcher:  dispatcher,
		Limiter:     f.limiter,
		Revoker:     f.revoker,
	}).WithClock(now)
	f.apps = NewApplicationService(ApplicationDependencies{
		Applications:   f.store.Applications(),
		History:        f.store.ApplicationHistory(),
		Lookups:        f.store.Lookups(),
		Resolver:       resolver,
		Idempotency:    f.idem,
		IdempotencyTTL: cfg.Applications.IdempotencyTTL,
		Dispatcher:     dispatcher,
	})
	f.admin = NewAdminService(AdminDependencies{
		Users:        f.store.Users(),
		Groups:       f.store.Groups(),
		Persons:      f.store.Persons(),
		NationalIDs:  f.store.NationalIDs(),
		Applications: f.store.Applications(),
		Resets:       f.auth,
		BcryptCost:   cfg.Auth.BcryptCost,
	})
	f.lookups = NewLookupService(f.store.Lookups())
	f.profiles = NewProfileService(f.store.Users(), f.store.NationalIDs(), nil)

	_, err := f.admin.SeedGroups(f.ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) birthDate(yearsAgo int) *time.Time {
	d := f.clock.AddDate(-yearsAgo, 0, 0)
	return &d
}

func (f *fixture) registerInput() RegisterInput {
	return RegisterInput{
		FirstNames:       "Pedro",
		LastNames:        "Martinez",
		Email:            "Pedro.M@Example.com",
		Username:         "pmartinez",
		BirthDate:        f.birthDate(30),
		NationalIDType:   domain.NationalIDTypeCedula,
		NationalIDNumber: "001-1234567-8",
		AcceptedTOS:      true,
		Password1:        testPassword,
		Password2:        testPassword,
	}
}

func (f *fixture) register() *domain.User {
	f.t.Helper()
	user, err := f.auth.Register(f.ctx, f.registerInput())
	require.NoError(f.t, err)
	return user
}

// activeUser registers and activates the default account.
func (f *fixture) activeUser() *domain.User {
	f.t.Helper()
	user := f.register()
	require.NoError(f.t, f.auth.ActivateUser(f.ctx, user))
	return user
}

// linkParts splits an emailed link into its uidb64 and token segments.
func linkParts(t *testing.T, link, basePath string) (string, string) {
	t.Helper()
	prefix := "https://jobs.example.com" + basePath + "/"
	require.True(t, strings.HasPrefix(link, prefix), link)
	parts := strings.Split(strings.TrimPrefix(link, prefix), "/")
	require.Len(t, parts, 2)
	return parts[0], parts[1]
}

func domainErr(t *testing.T, err error) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	return de
}
