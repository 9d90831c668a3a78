package verification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/domain"
	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

const (
	testSentinel   = "verify-user"
	testSessionKey = "_verification_token"
)

type mapSession struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func newMapSession() *mapSession {
	return &mapSession{values: map[string]interface{}{}}
}

func (s *mapSession) Get(key string) interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *mapSession) Set(key string, val interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = val
}

func (s *mapSession) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

type userStore struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (s *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *userStore) markVerified(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[user.ID]
	u.IsVerified = true
	u.IsActive = true
	return nil
}

func (s *userStore) get(id string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

type fixture struct {
	store  *userStore
	tokens *auth.OneTimeTokens
	flow   *Flow
	user   *domain.User
}

func newFixture() *fixture {
	user := &domain.User{ID: "4e0b6d55-1b7e-4a36-9a52-0d3e8f1f2a01", Email: "u@example.com", PasswordHash: "$2a$04$abc"}
	store := &userStore{users: map[string]*domain.User{user.ID: user}}
	tokens := auth.NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	flow := &Flow{
		Name:       "verify",
		BasePath:   "/accounts/register/verify/",
		Sentinel:   testSentinel,
		SessionKey: testSessionKey,
		Users:      store,
		Tokens:     tokens,
		OnAccepted: store.markVerified,
	}
	flow.OnRevalidated = store.markVerified
	return &fixture{store: store, tokens: tokens, flow: flow, user: user}
}

func TestRawTokenRedirectsToSentinelAndActivates(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	sess := newMapSession()
	uid := EncodeUID(fx.user.ID)

	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	assert.False(t, fx.store.get(fx.user.ID).IsVerified)

	out, err := fx.flow.Handle(ctx, uid, token, sess)
	require.NoError(t, err)
	assert.Equal(t, StateTokenAcceptedRedirected, out.State)
	assert.Equal(t, []State{StateAwaitingToken, StateTokenPresentedInURL, StateTokenAcceptedRedirected}, out.Trail)
	assert.True(t, out.Redirect())
	assert.Equal(t, "/accounts/register/verify/"+uid+"/"+testSentinel, out.RedirectTo)
	assert.NotContains(t, out.RedirectTo, token)
	assert.Equal(t, token, sess.Get(testSessionKey))

	activated := fx.store.get(fx.user.ID)
	assert.True(t, activated.IsVerified, "activation happens on the raw token request")
	assert.True(t, activated.IsActive)

	out, err = fx.flow.Handle(ctx, uid, testSentinel, sess)
	require.NoError(t, err)
	assert.Equal(t, StateSessionTokenRevalidated, out.State)
	assert.Equal(t, []State{StateAwaitingToken, StateSentinelPresentedInURL, StateSessionTokenRevalidated}, out.Trail)
	assert.True(t, out.ValidLink)
	assert.False(t, out.Redirect())
	assert.True(t, out.State.Terminal())
}

func TestCorruptedTokenIsInvalid(t *testing.T) {
	fx := newFixture()
	sess := newMapSession()

	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	out, err := fx.flow.Handle(context.Background(), EncodeUID(fx.user.ID), token+"x", sess)
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, out.State)
	assert.False(t, out.ValidLink)
	assert.Empty(t, out.RedirectTo)
	assert.Nil(t, sess.Get(testSessionKey))
	assert.False(t, fx.store.get(fx.user.ID).IsVerified)
}

func TestSentinelWithoutSessionTokenIsInvalid(t *testing.T) {
	fx := newFixture()
	out, err := fx.flow.Handle(context.Background(), EncodeUID(fx.user.ID), testSentinel, newMapSession())
	require.NoError(t, err)
	assert.Equal(t, []State{StateAwaitingToken, StateSentinelPresentedInURL, StateInvalid}, out.Trail)
	assert.False(t, fx.store.get(fx.user.ID).IsVerified)
}

func TestSentinelFailsAfterPasswordChange(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()
	sess := newMapSession()
	uid := EncodeUID(fx.user.ID)
	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	_, err = fx.flow.Handle(ctx, uid, token, sess)
	require.NoError(t, err)

	fx.store.users[fx.user.ID].PasswordHash = "$2a$04$changed"
	out, err := fx.flow.Handle(ctx, uid, testSentinel, sess)
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, out.State)

	_, ok, err := fx.flow.Revalidate(ctx, uid, sess)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownOrMalformedUIDIsInvalid(t *testing.T) {
	fx := newFixture()
	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	for _, uid := range []string{EncodeUID("missing"), "***", ""} {
		out, err := fx.flow.Handle(context.Background(), uid, token, newMapSession())
		require.NoError(t, err)
		assert.Equal(t, StateInvalid, out.State, uid)
	}
}

func TestConcurrentRawTokenHitsAllSucceed(t *testing.T) {
	fx := newFixture()
	uid := EncodeUID(fx.user.ID)
	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]State, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := fx.flow.Handle(context.Background(), uid, token, newMapSession())
			if err == nil {
				results[i] = out.State
			}
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Equal(t, StateTokenAcceptedRedirected, s)
	}
	assert.True(t, fx.store.get(fx.user.ID).IsVerified)
}

func TestSideEffectFailureIsAnError(t *testing.T) {
	fx := newFixture()
	fx.flow.OnAccepted = func(context.Context, *domain.User) error { return errors.New("db down") }
	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	_, err = fx.flow.Handle(context.Background(), EncodeUID(fx.user.ID), token, newMapSession())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "db down"))
}

func TestObserveAndClear(t *testing.T) {
	fx := newFixture()
	var seen []State
	fx.flow.Observe = func(name string, s State) {
		assert.Equal(t, "verify", name)
		seen = append(seen, s)
	}
	sess := newMapSession()
	token, err := fx.tokens.MakeToken(fx.user)
	require.NoError(t, err)

	_, err = fx.flow.Handle(context.Background(), EncodeUID(fx.user.ID), token, sess)
	require.NoError(t, err)
	fx.flow.Clear(sess)
	assert.Nil(t, sess.Get(testSessionKey))
	assert.Equal(t, []State{StateTokenAcceptedRedirected}, seen)
}

func TestParseLinkToken(t *testing.T) {
	s := ParseLinkToken("set-password", "set-password")
	assert.True(t, s.IsSentinel())
	assert.Empty(t, s.Secret())

	r := ParseLinkToken("set-passwordx", "set-password")
	assert.False(t, r.IsSentinel())
	assert.Equal(t, "set-passwordx", r.Secret())
}

func TestLinkPathRoundTrip(t *testing.T) {
	fx := newFixture()
	p := fx.flow.LinkPath(fx.user.ID, "tok")
	parts := strings.Split(strings.TrimPrefix(p, "/accounts/register/verify/"), "/")
	require.Len(t, parts, 2)
	id, err := DecodeUID(parts[0])
	require.NoError(t, err)
	assert.Equal(t, fx.user.ID, id)
	assert.Equal(t, "tok", parts[1])
}
