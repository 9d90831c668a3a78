package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hirelane/recruitment-service/internal/domain"
)

// TokenManager handles issuing and validating JWT access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute, now: time.Now}
}

// WithClock returns a copy reading time from now.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *tm
	cp.now = now
	return &cp
}

// Claims describes JWT payload.
type Claims struct {
	Groups []string `json:"groups,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the user.
func (tm *TokenManager) GenerateToken(userID string, groups []string) (string, domain.AccessToken, error) {
	issuedAt := tm.now()
	meta := domain.AccessToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Groups:    groups,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(tm.ttl),
	}
	claims := &Claims{
		Groups: groups,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        meta.ID,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(meta.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", domain.AccessToken{}, err
	}
	return tokenString, meta, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired(), jwt.WithStrictDecoding())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// TTL returns the access token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}
