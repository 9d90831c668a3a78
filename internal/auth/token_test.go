package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 15)

	signed, meta, err := tm.GenerateToken("user-1", []string{"candidate"})
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), meta.ExpiresAt, 5*time.Second)

	claims, err := tm.ParseToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, meta.ID, claims.ID)
	assert.Equal(t, []string{"candidate"}, claims.Groups)
}

func TestTokenManagerRejectsExpiredAndForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := tm.GenerateToken("user-1", nil)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(stale)
	assert.Error(t, err)

	other := NewTokenManager("other-secret", 1)
	foreign, _, err := other.GenerateToken("user-1", nil)
	require.NoError(t, err)
	_, err = tm.ParseToken(foreign)
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword("short", "ana", "ana@example.com"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword("1234567890", "ana", "ana@example.com"), ErrPasswordNumeric)
	assert.ErrorIs(t, ValidatePassword("anabelle-2026", "anabelle", "x@example.com"), ErrPasswordTooSimilar)
	assert.NoError(t, ValidatePassword("correct horse battery", "anabelle", "anabelle@example.com"))

	hash, err := HashPassword("correct horse battery", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse battery"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
