package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hirelane/recruitment-service/internal/config"
)

const (
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	revokedPrefix     = "revoked"
	sessionPrefix     = "session"
)

var errRedisNotConfigured = errors.New("redis client not configured")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Exists(context.Context, ...string) *redis.IntCmd
	Del(context.Context, ...string) *redis.IntCmd
	Scan(context.Context, uint64, string, int64) *redis.ScanCmd
}

// Redis wraps the go-redis client with the namespaced helpers used by the services.
type Redis struct {
	Client    *redis.Client
	store     cmdable
	namespace string
	available bool
}

// NewRedis connects to Redis using the provided configuration. An unreachable server is
// logged and reported through Available so callers can degrade.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	r := &Redis{Client: client, store: client, namespace: cfg.KeyPrefix}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		r.available = true
		logger.Info("connected to redis")
	}

	return r
}

func newRedisWithStore(store cmdable, namespace string) *Redis {
	return &Redis{store: store, namespace: namespace, available: true}
}

// Available reports whether the initial ping succeeded.
func (r *Redis) Available() bool {
	return r != nil && r.available
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.store == nil {
		return errRedisNotConfigured
	}
	return r.store.Ping(ctx).Err()
}

// Get returns the value at key. Missing keys yield ("", false, nil).
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.store == nil {
		return "", false, errRedisNotConfigured
	}
	val, err := r.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a value with an optional TTL.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r == nil || r.store == nil {
		return errRedisNotConfigured
	}
	return r.store.Set(ctx, key, value, ttl).Err()
}

// SetNX sets a value only if the key does not exist yet.
func (r *Redis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if r == nil || r.store == nil {
		return false, errRedisNotConfigured
	}
	return r.store.SetNX(ctx, key, value, ttl).Result()
}

// Del removes the provided keys.
func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if r == nil || r.store == nil {
		return errRedisNotConfigured
	}
	return r.store.Del(ctx, keys...).Err()
}

// IncrWithTTL increments and sets the TTL on the first increment.
func (r *Redis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if r == nil || r.store == nil {
		return 0, errRedisNotConfigured
	}
	count, err := r.store.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 && count == 1 {
		if err := r.store.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// FixedWindowAllow applies a fixed-window rate limit to scope.
func (r *Redis) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	count, err := r.IncrWithTTL(ctx, r.RateLimitKey(scope), window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// Revoke blacklists an access token id until it would have expired anyway.
func (r *Redis) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.Set(ctx, r.RevokedKey(tokenID), "1", ttl)
}

// IsRevoked reports whether tokenID was revoked.
func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.store == nil {
		return false, errRedisNotConfigured
	}
	n, err := r.store.Exists(ctx, r.RevokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (r *Redis) IdempotencyKey(scope, id string) string {
	return r.buildKey(idempotencyPrefix, scope, id)
}

// RateLimitKey returns a namespaced key for rate limit counters.
func (r *Redis) RateLimitKey(scope string) string {
	return r.buildKey(rateLimitPrefix, scope)
}

// RevokedKey returns the key marking a revoked access token.
func (r *Redis) RevokedKey(tokenID string) string {
	return r.buildKey(revokedPrefix, tokenID)
}

// SessionKey returns the key holding a browser session.
func (r *Redis) SessionKey(id string) string {
	return r.buildKey(sessionPrefix, id)
}

func (r *Redis) buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	if r.namespace != "" {
		clean = append(clean, r.namespace)
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
