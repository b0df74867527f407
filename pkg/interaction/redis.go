package interaction

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// CookieName is the transport cookie carrying the interaction session ID
	CookieName = "_interaction"

	defaultPrefix = "interaction"
	defaultTTL    = 10 * time.Minute
)

// RedisStore validates and maintains interaction sessions in Redis. Session
// payloads are owned by the interaction engine; the guard path only checks
// existence.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed interaction session store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
}

// WithTTL overrides the session TTL used for new sessions
func (s *RedisStore) WithTTL(ttl time.Duration) *RedisStore {
	s.ttl = ttl
	return s
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// CheckSession implements Validator. Any failure — missing cookie, missing
// key, Redis being unreachable — reads as ErrSessionNotFound or the
// underlying error; callers recover, never this store.
func (s *RedisStore) CheckSession(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ErrSessionNotFound
	}

	exists, err := s.client.Exists(ctx, s.key(cookie.Value)).Result()
	if err != nil {
		return fmt.Errorf("interaction store unavailable: %w", err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// CreateSession stores a session payload under the given interaction ID.
// Used by the interaction engine's bookkeeping, not by the guard.
func (s *RedisStore) CreateSession(ctx context.Context, id string, payload []byte) error {
	if id == "" {
		return fmt.Errorf("interaction ID is required")
	}
	return s.client.Set(ctx, s.key(id), payload, s.ttl).Err()
}

// DeleteSession removes a session, e.g. after the interaction completes
func (s *RedisStore) DeleteSession(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
