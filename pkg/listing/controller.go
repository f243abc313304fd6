package listing

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/seaward/sailfinder/pkg/types"
	"github.com/seaward/sailfinder/pkg/urlstate"
)

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_searches_total",
		Help: "The total number of search fetches issued",
	})
	noStaleDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_stale_responses_total",
		Help: "The total number of search responses discarded as stale",
	})
	noSearchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_search_errors_total",
		Help: "The total number of search fetches that surfaced an error",
	})
)

// SearchClient issues one search request for the given state. Implementations
// must honor ctx cancellation and report it as context.Canceled.
type SearchClient interface {
	Search(ctx context.Context, state types.FilterState) (*types.SearchResultPage, error)
}

// Navigator receives address-bar writes. The controller is its own navigator
// in production: every mutation funnels into Navigate, which is the only
// trigger for state resynchronization.
type Navigator interface {
	Navigate(query url.Values) uint64
}

// View is the renderable listing state. A new fetch clears Results
// immediately so a stale list is never shown against fresh filters.
type View struct {
	Results    []types.Cruise `json:"results"`
	TotalCount int            `json:"totalCount"`
	Loading    bool           `json:"loading"`
	Err        bool           `json:"error"`
}

type Options struct {
	// Timeout bounds one search fetch. Zero means 30 seconds.
	Timeout time.Duration
}

const defaultSearchTimeout = 30 * time.Second

// Controller keeps the query string, the decoded FilterState and the
// rendered view consistent for one page session. The query string is the
// single source of truth; memory is only ever resynchronized from it.
type Controller struct {
	mu      sync.Mutex
	client  SearchClient
	timeout time.Duration

	query  url.Values
	state  types.FilterState
	synced bool

	seq     uint64
	viewSeq uint64
	cancel  context.CancelFunc
	view    View
	commit  chan struct{}
	closed  bool
}

func NewController(client SearchClient, opts Options) *Controller {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	return &Controller{
		client:  client,
		timeout: timeout,
		query:   url.Values{},
		state:   types.NewFilterState(),
		commit:  make(chan struct{}),
	}
}

// Navigate replaces the canonical query and resynchronizes. Returns the
// sequence number of the fetch it issued, for use with WaitView.
func (c *Controller) Navigate(query url.Values) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.seq
	}
	c.query = cloneQuery(query)
	c.state = urlstate.Decode(c.query)
	c.synced = true
	return c.fetchLocked()
}

// ApplyUpdate merges a delta on top of the current query string, read fresh
// at call time, and navigates to the result. Handlers must never keep their
// own copy of the selection.
func (c *Controller) ApplyUpdate(u urlstate.Update) uint64 {
	c.mu.Lock()
	next := urlstate.Merge(c.query, u)
	c.mu.Unlock()
	return c.Navigate(next)
}

// ToggleFacet flips one facet value relative to the current query.
func (c *Controller) ToggleFacet(fv urlstate.FacetValue) uint64 {
	c.mu.Lock()
	next := urlstate.Toggle(c.query, fv)
	c.mu.Unlock()
	return c.Navigate(next)
}

// fetchLocked starts the fetch for the current state, superseding any fetch
// still in flight. Caller holds c.mu.
func (c *Controller) fetchLocked() uint64 {
	c.seq++
	seq := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	c.cancel = cancel
	c.view = View{Loading: true}
	noSearches.Inc()

	state := c.state
	go c.runFetch(ctx, cancel, seq, state)
	return seq
}

func (c *Controller) runFetch(ctx context.Context, cancel context.CancelFunc, seq uint64, state types.FilterState) {
	defer cancel()
	page, err := c.client.Search(ctx, state)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// A newer fetch was issued; this response must not touch any state,
		// whatever it carries.
		noStaleDiscards.Inc()
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Teardown, not a user-visible failure.
			return
		}
		noSearchErrors.Inc()
		c.commitLocked(seq, View{Err: true})
		return
	}
	c.commitLocked(seq, View{Results: page.Items, TotalCount: page.TotalCount})
}

// commitLocked publishes a view and wakes waiters. Caller holds c.mu.
func (c *Controller) commitLocked(seq uint64, view View) {
	c.view = view
	c.viewSeq = seq
	close(c.commit)
	c.commit = make(chan struct{})
}

// View returns the current renderable state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// State returns the current decoded FilterState.
func (c *Controller) State() types.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Query returns a copy of the canonical query string.
func (c *Controller) Query() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneQuery(c.query)
}

// Synced reports whether the controller has left its uninitialized state.
func (c *Controller) Synced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

// WaitView blocks until a view produced by fetch minSeq or newer has been
// committed, or ctx expires. Superseded fetches never commit, so waiting on
// an old sequence resolves with the newest result.
func (c *Controller) WaitView(ctx context.Context, minSeq uint64) (View, error) {
	for {
		c.mu.Lock()
		if c.viewSeq >= minSeq {
			view := c.view
			c.mu.Unlock()
			return view, nil
		}
		commit := c.commit
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return View{}, ctx.Err()
		case <-commit:
		}
	}
}

// Close cancels any in-flight fetch. The controller stays readable but will
// not issue further fetches.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func cloneQuery(query url.Values) url.Values {
	clone := make(url.Values, len(query))
	for k, v := range query {
		clone[k] = append([]string(nil), v...)
	}
	return clone
}
