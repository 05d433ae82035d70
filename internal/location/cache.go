package location

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/homepage-finder/internal/model"
)

// errLeaderCancelled marks a shared lookup cut short by the context of the
// caller that ran it.
var errLeaderCancelled = eris.New("location: shared lookup cancelled")

// CachedResolver memoizes another Resolver by URL for the lifetime of a
// batch run. Concurrent lookups of the same URL share one extraction.
type CachedResolver struct {
	next  Resolver
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]model.LocationSignal
}

// NewCachedResolver wraps next with a per-URL cache.
func NewCachedResolver(next Resolver) *CachedResolver {
	return &CachedResolver{next: next, entries: make(map[string]model.LocationSignal)}
}

// Resolve returns the cached signal for rawURL or computes it. Results
// from a cancelled context are not cached. A caller whose context is still
// live retries when the shared lookup it joined was cancelled.
func (c *CachedResolver) Resolve(ctx context.Context, rawURL string) model.LocationSignal {
	for {
		c.mu.RLock()
		sig, ok := c.entries[rawURL]
		c.mu.RUnlock()
		if ok {
			return sig
		}

		v, err, _ := c.group.Do(rawURL, func() (any, error) {
			c.mu.RLock()
			cached, ok := c.entries[rawURL]
			c.mu.RUnlock()
			if ok {
				return cached, nil
			}

			sig := c.next.Resolve(ctx, rawURL)
			if ctx.Err() != nil {
				return sig, errLeaderCancelled
			}
			c.mu.Lock()
			c.entries[rawURL] = sig
			c.mu.Unlock()
			return sig, nil
		})
		if err == nil || ctx.Err() != nil {
			return v.(model.LocationSignal)
		}
	}
}

// Len returns the number of cached URLs.
func (c *CachedResolver) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
