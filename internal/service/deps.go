package service

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/hirelane/recruitment-service/pkg/util/errorutil"
)

// RateLimiter is a fixed-window limiter keyed by scope.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// TokenRevoker blacklists access token ids.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// IdempotencyStore remembers the result of a keyed request.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]any

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, map[string]any(f))
}
