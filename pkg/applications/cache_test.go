package applications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFinder struct {
	calls int
	app   *Application
	err   error
}

func (f *countingFinder) FindApplicationByID(ctx context.Context, id string) (*Application, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.app, nil
}

func TestCachedFinder(t *testing.T) {
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		inner := &countingFinder{app: &Application{ID: "app_1", Type: TypeSPA}}
		cached := NewCachedFinder(inner, 8, time.Minute, nil)

		first, err := cached.FindApplicationByID(ctx, "app_1")
		require.NoError(t, err)

		second, err := cached.FindApplicationByID(ctx, "app_1")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingFinder{err: ErrNotFound}
		cached := NewCachedFinder(inner, 8, time.Minute, nil)

		_, err := cached.FindApplicationByID(ctx, "app_1")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = cached.FindApplicationByID(ctx, "app_1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("expired entries fall through", func(t *testing.T) {
		inner := &countingFinder{app: &Application{ID: "app_1"}}
		cached := NewCachedFinder(inner, 8, 10*time.Millisecond, nil)

		_, err := cached.FindApplicationByID(ctx, "app_1")
		require.NoError(t, err)

		time.Sleep(25 * time.Millisecond)

		_, err = cached.FindApplicationByID(ctx, "app_1")
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})
}
