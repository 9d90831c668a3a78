package persistence

import (
	"context"
	"time"
)

const sessionOpTimeout = 2 * time.Second

// SessionStorage adapts Redis to fiber's session storage interface.
type SessionStorage struct {
	redis *Redis
}

// NewSessionStorage stores fiber sessions under the redis session namespace.
func NewSessionStorage(r *Redis) *SessionStorage {
	return &SessionStorage{redis: r}
}

// Get returns nil for unknown or expired sessions.
func (s *SessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionOpTimeout)
	defer cancel()
	val, ok, err := s.redis.Get(ctx, s.redis.SessionKey(key))
	if err != nil || !ok {
		return nil, err
	}
	return []byte(val), nil
}

func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionOpTimeout)
	defer cancel()
	return s.redis.Set(ctx, s.redis.SessionKey(key), val, exp)
}

func (s *SessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionOpTimeout)
	defer cancel()
	return s.redis.Del(ctx, s.redis.SessionKey(key))
}

// Reset drops every stored session.
func (s *SessionStorage) Reset() error {
	if s.redis == nil || s.redis.store == nil {
		return errRedisNotConfigured
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*sessionOpTimeout)
	defer cancel()

	pattern := s.redis.SessionKey("*")
	var cursor uint64
	for {
		keys, next, err := s.redis.store.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.redis.Del(ctx, keys...); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close is a no-op; the Redis client is closed by its owner.
func (s *SessionStorage) Close() error {
	return nil
}
