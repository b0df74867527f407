package applications

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/gatehouse/pkg/observability"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 30 * time.Second
)

// CachedFinder wraps a Finder with an expirable LRU cache. The guard hits the
// fallback path only when a session is already lost, but a burst of orphaned
// requests for the same application should not fan out to the database.
type CachedFinder struct {
	inner   Finder
	cache   *lru.LRU[string, *Application]
	metrics *observability.Metrics
}

// NewCachedFinder creates a caching wrapper around inner. A non-positive size
// or TTL selects the defaults. metrics may be nil.
func NewCachedFinder(inner Finder, size int, ttl time.Duration, metrics *observability.Metrics) *CachedFinder {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &CachedFinder{
		inner:   inner,
		cache:   lru.NewLRU[string, *Application](size, nil, ttl),
		metrics: metrics,
	}
}

// FindApplicationByID returns the cached record when fresh, otherwise falls
// through to the inner finder. Lookup errors are not cached.
func (c *CachedFinder) FindApplicationByID(ctx context.Context, id string) (*Application, error) {
	if app, ok := c.cache.Get(id); ok {
		if c.metrics != nil {
			c.metrics.AppCacheHitsTotal.Inc()
		}
		return app, nil
	}

	if c.metrics != nil {
		c.metrics.AppCacheMissesTotal.Inc()
	}

	app, err := c.inner.FindApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Add(id, app)
	return app, nil
}
