package facets

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/seaward/sailfinder/pkg/types"
)

// OptionsClient fetches the facet option lists from the upstream
// filter-options endpoint.
type OptionsClient interface {
	FilterOptions(ctx context.Context) (*types.FacetOptions, error)
}

const (
	defaultOptionsTimeout = 10 * time.Second
	defaultOptionsRetry   = time.Minute
)

// OptionCache fetches the facet option lists once and serves them immutably
// afterwards. A failed fetch degrades every list to empty (or the last
// successfully fetched lists): facet pickers go dark but search keeps
// working, ids from the URL are still sent upstream. Failures are only held
// for a short window before the next Options call retries, so one upstream
// blip at startup does not stick for the process lifetime.
type OptionCache struct {
	mu      sync.RWMutex
	client  OptionsClient
	timeout time.Duration
	retry   time.Duration
	options types.FacetOptions
	fetched bool
	retryAt time.Time
}

func NewOptionCache(client OptionsClient) *OptionCache {
	return &OptionCache{
		client:  client,
		timeout: defaultOptionsTimeout,
		retry:   defaultOptionsRetry,
	}
}

// Options returns the cached lists, fetching on first use or once the retry
// window after a failed fetch has passed.
func (c *OptionCache) Options(ctx context.Context) types.FacetOptions {
	c.mu.RLock()
	if c.fetched || time.Now().Before(c.retryAt) {
		opts := c.options
		c.mu.RUnlock()
		return opts
	}
	c.mu.RUnlock()
	return c.Refresh(ctx)
}

// Refresh replaces the cached lists wholesale. On failure the previous lists
// are kept if any were ever fetched, otherwise empty lists are served, and
// refetching is paused for the retry window.
func (c *OptionCache) Refresh(ctx context.Context) types.FacetOptions {
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts, err := c.client.FilterOptions(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Printf("facet options fetch failed, degrading to cached/empty lists: %v", err)
		c.retryAt = time.Now().Add(c.retry)
		return c.options
	}
	c.options = *opts
	c.fetched = true
	c.retryAt = time.Time{}
	return c.options
}

// Invalidate forces the next Options call to refetch.
func (c *OptionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = false
	c.retryAt = time.Time{}
}
