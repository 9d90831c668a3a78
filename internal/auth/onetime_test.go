package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelane/recruitment-service/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestUser() *domain.User {
	return &domain.User{ID: "6b1f8f2e-7f3a-4c1e-9d7a-2f1f0f6e0a11", Email: "ana@example.com", PasswordHash: "$2a$04$hash-one"}
}

func TestOneTimeTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 30, 15, 0, time.UTC)
	gen := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute).WithClock(fixedClock(now))
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)
	assert.True(t, gen.CheckToken(user, token))
}

func TestOneTimeTokenInvalidAfterPasswordChange(t *testing.T) {
	gen := NewOneTimeTokens("secret", domain.TokenPurposeReset, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)

	user.PasswordHash = "$2a$04$hash-two"
	assert.False(t, gen.CheckToken(user, token))
}

func TestOneTimeResetTokenInvalidAfterLogin(t *testing.T) {
	gen := NewOneTimeTokens("secret", domain.TokenPurposeReset, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)

	login := time.Now()
	user.LastLoginAt = &login
	assert.False(t, gen.CheckToken(user, token))
}

func TestOneTimeVerifyTokenSurvivesActivation(t *testing.T) {
	gen := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)

	user.IsActive = true
	user.IsVerified = true
	assert.True(t, gen.CheckToken(user, token))
}

func TestOneTimeTokenExpires(t *testing.T) {
	issued := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	gen := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.WithClock(fixedClock(issued)).MakeToken(user)
	require.NoError(t, err)

	assert.True(t, gen.WithClock(fixedClock(issued.Add(59*time.Minute))).CheckToken(user, token))
	assert.False(t, gen.WithClock(fixedClock(issued.Add(61*time.Minute))).CheckToken(user, token))
}

func TestOneTimeTokenScopedToPurposeAndUser(t *testing.T) {
	verify := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	reset := NewOneTimeTokens("secret", domain.TokenPurposeReset, time.Hour, time.Minute)
	user := newTestUser()

	token, err := verify.MakeToken(user)
	require.NoError(t, err)
	assert.False(t, reset.CheckToken(user, token))

	other := newTestUser()
	other.ID = "0c4f0c55-4b0b-4fb5-b2a8-5f4a8a3f5c22"
	assert.False(t, verify.CheckToken(other, token))

	otherSecret := NewOneTimeTokens("another", domain.TokenPurposeVerify, time.Hour, time.Minute)
	assert.False(t, otherSecret.CheckToken(user, token))
}

func TestOneTimeTokenRejectsCorruption(t *testing.T) {
	gen := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)

	assert.False(t, gen.CheckToken(user, token+"x"))
	assert.False(t, gen.CheckToken(user, ""))
	assert.False(t, gen.CheckToken(user, "verify-user"))
	assert.False(t, gen.CheckToken(nil, token))
}

func TestOneTimeTokenRejectsAlteredLastCharacter(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	gen := NewOneTimeTokens("secret", domain.TokenPurposeReset, time.Hour, time.Minute)
	user := newTestUser()

	token, err := gen.MakeToken(user)
	require.NoError(t, err)
	require.True(t, gen.CheckToken(user, token))

	head, last := token[:len(token)-1], token[len(token)-1]
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] == last {
			continue
		}
		altered := head + string(alphabet[i])
		assert.False(t, gen.CheckToken(user, altered), "accepted %q", altered)
	}
}

func TestOneTimeTokenDeterministicWithinBucket(t *testing.T) {
	base := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	gen := NewOneTimeTokens("secret", domain.TokenPurposeVerify, time.Hour, time.Minute)
	user := newTestUser()

	first, err := gen.WithClock(fixedClock(base.Add(5 * time.Second))).MakeToken(user)
	require.NoError(t, err)
	second, err := gen.WithClock(fixedClock(base.Add(50 * time.Second))).MakeToken(user)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	later, err := gen.WithClock(fixedClock(base.Add(2 * time.Minute))).MakeToken(user)
	require.NoError(t, err)
	assert.NotEqual(t, first, later)
}
