package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// OneTimeTokens issues stateless, expiring tokens for a single purpose.
//
// Nothing is stored. The signing key for a user is derived from the server secret,
// the purpose, the user id and the current password hash, so changing the password
// invalidates every outstanding token. Reset tokens also bind the last login time.
// Issue time is truncated to the bucket size, which makes tokens deterministic
// within a bucket.
type OneTimeTokens struct {
	secret  []byte
	purpose domain.TokenPurpose
	ttl     time.Duration
	bucket  time.Duration
	now     func() time.Time
}

// NewOneTimeTokens constructs a generator. Zero ttl or bucket fall back to three days and one minute.
func NewOneTimeTokens(secret string, purpose domain.TokenPurpose, ttl, bucket time.Duration) *OneTimeTokens {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if bucket <= 0 {
		bucket = time.Minute
	}
	return &OneTimeTokens{secret: []byte(secret), purpose: purpose, ttl: ttl, bucket: bucket, now: time.Now}
}

// WithClock returns a copy that reads time from now.
func (g *OneTimeTokens) WithClock(now func() time.Time) *OneTimeTokens {
	cp := *g
	cp.now = now
	return &cp
}

// Purpose returns the flow this generator serves.
func (g *OneTimeTokens) Purpose() domain.TokenPurpose {
	return g.purpose
}

// MakeToken returns a token for the user's current state.
func (g *OneTimeTokens) MakeToken(user *domain.User) (string, error) {
	issuedAt := g.now().Truncate(g.bucket)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Audience:  jwt.ClaimStrings{string(g.purpose)},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(g.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.keyFor(user))
}

// CheckToken reports whether token was issued for the user's current state and has not expired.
func (g *OneTimeTokens) CheckToken(user *domain.User, token string) bool {
	if user == nil || token == "" {
		return false
	}
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return g.keyFor(user), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(string(g.purpose)),
		jwt.WithSubject(user.ID),
		jwt.WithTimeFunc(g.now),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	return err == nil && parsed.Valid
}

func (g *OneTimeTokens) keyFor(user *domain.User) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(g.purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(user.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(user.PasswordHash))
	if g.purpose == domain.TokenPurposeReset {
		mac.Write([]byte{0})
		if user.LastLoginAt != nil {
			mac.Write([]byte(strconv.FormatInt(user.LastLoginAt.UTC().Unix(), 10)))
		}
	}
	return mac.Sum(nil)
}
