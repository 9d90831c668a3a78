package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	r := newRedisWithStore(mock, "rs")

	allowed, count, err := r.FixedWindowAllow(ctx, "login:ana@example.com", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 1, count)
	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, "rs:rate_limit:login:ana@example.com", mock.expireCalls[0].key)

	allowed, count, err = r.FixedWindowAllow(ctx, "login:ana@example.com", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 2, count)
	assert.Len(t, mock.expireCalls, 1, "ttl is only set on the first hit")

	allowed, _, err = r.FixedWindowAllow(ctx, "login:ana@example.com", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestGetMissingKey(t *testing.T) {
	r := newRedisWithStore(newMockCmdable(), "rs")
	val, ok, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestRevocation(t *testing.T) {
	ctx := context.Background()
	r := newRedisWithStore(newMockCmdable(), "rs")

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", 0))
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "already expired tokens are not stored")
}

func TestKeyBuilders(t *testing.T) {
	r := &Redis{namespace: "rs"}
	assert.Equal(t, "rs:idempotency:applications:abc", r.IdempotencyKey("applications", "abc"))
	assert.Equal(t, "rs:rate_limit:login", r.RateLimitKey("login"))
	assert.Equal(t, "rs:revoked:jti", r.RevokedKey("jti"))
	assert.Equal(t, "rs:session:sid", r.SessionKey(" sid "))

	bare := &Redis{}
	assert.Equal(t, "session:sid", bare.SessionKey("sid"))
}

func TestNilRedisReportsNotConfigured(t *testing.T) {
	var r *Redis
	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(context.Background()), errRedisNotConfigured)
	_, err := r.SetNX(context.Background(), "k", "v", time.Second)
	assert.ErrorIs(t, err, errRedisNotConfigured)
}

func TestSessionStorage(t *testing.T) {
	mock := newMockCmdable()
	r := newRedisWithStore(mock, "rs")
	storage := NewSessionStorage(r)

	got, err := storage.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, storage.Set("a", []byte("payload-a"), time.Hour))
	require.NoError(t, storage.Set("b", []byte("payload-b"), time.Hour))
	require.NoError(t, r.Set(context.Background(), "rs:other", "keep", 0))

	got, err = storage.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-a"), got)

	require.NoError(t, storage.Delete("a"))
	got, err = storage.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, storage.Reset())
	assert.Equal(t, []string{"rs:other"}, mock.keys())
	assert.NoError(t, storage.Close())
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) keys() []string {
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for _, k := range m.keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}
