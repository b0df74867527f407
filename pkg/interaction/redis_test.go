package interaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client), mr
}

func requestWithSession(id string) *http.Request {
	req := httptest.NewRequest("GET", "/sign-in", nil)
	if id != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	}
	return req
}

func TestRedisStoreCheckSession(t *testing.T) {
	ctx := context.Background()

	t.Run("live session passes", func(t *testing.T) {
		store, _ := newTestStore(t)
		require.NoError(t, store.CreateSession(ctx, "itx_1", []byte(`{"step":"sign-in"}`)))

		assert.NoError(t, store.CheckSession(ctx, requestWithSession("itx_1")))
	})

	t.Run("missing cookie fails", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.ErrorIs(t, store.CheckSession(ctx, requestWithSession("")), ErrSessionNotFound)
	})

	t.Run("unknown session fails", func(t *testing.T) {
		store, _ := newTestStore(t)
		assert.ErrorIs(t, store.CheckSession(ctx, requestWithSession("itx_unknown")), ErrSessionNotFound)
	})

	t.Run("expired session fails", func(t *testing.T) {
		store, mr := newTestStore(t)
		require.NoError(t, store.CreateSession(ctx, "itx_1", []byte(`{}`)))

		mr.FastForward(store.ttl * 2)

		assert.ErrorIs(t, store.CheckSession(ctx, requestWithSession("itx_1")), ErrSessionNotFound)
	})

	t.Run("unreachable store surfaces an error", func(t *testing.T) {
		store, mr := newTestStore(t)
		mr.Close()

		err := store.CheckSession(ctx, requestWithSession("itx_1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.Error(t, store.CreateSession(ctx, "", nil))

	require.NoError(t, store.CreateSession(ctx, "itx_1", []byte(`{}`)))
	require.NoError(t, store.DeleteSession(ctx, "itx_1"))

	assert.ErrorIs(t, store.CheckSession(ctx, requestWithSession("itx_1")), ErrSessionNotFound)
}

func TestValidatorFunc(t *testing.T) {
	called := false
	v := ValidatorFunc(func(ctx context.Context, r *http.Request) error {
		called = true
		return ErrSessionNotFound
	})

	assert.ErrorIs(t, v.CheckSession(context.Background(), requestWithSession("x")), ErrSessionNotFound)
	assert.True(t, called)
}
