package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/seaward/sailfinder/pkg/types"
	"golang.org/x/time/rate"
)

const (
	searchPath  = "/search/comprehensive"
	optionsPath = "/filter-options"

	// PageSize is the fixed page size sent upstream as limit.
	PageSize = 20
)

type Config struct {
	BaseUrl string
	// RequestsPerSecond throttles calls to the upstream host. Zero disables
	// throttling.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client consumes the upstream cruise search API. All price fields are
// normalized at this boundary; nothing above it sees raw price encodings.
type Client struct {
	baseUrl string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		baseUrl: cfg.BaseUrl,
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// Search issues one comprehensive search for the given state. Facet sets
// expand to repeated query parameters, the sort key maps to the upstream
// (sortBy, sortOrder) pair and pagination maps to limit/offset.
func (c *Client) Search(ctx context.Context, state types.FilterState) (*types.SearchResultPage, error) {
	query := url.Values{}
	for _, id := range state.CruiseLines.Sorted() {
		query.Add("cruiseLineId", strconv.Itoa(id))
	}
	for _, id := range state.Ports.Sorted() {
		query.Add("departurePortId", strconv.Itoa(id))
	}
	for _, id := range state.Ships.Sorted() {
		query.Add("shipId", strconv.Itoa(id))
	}
	for _, id := range state.Regions.Sorted() {
		query.Add("regionId", strconv.Itoa(id))
	}
	for _, month := range state.Months.Sorted() {
		query.Add("departureMonth", month)
	}
	for _, nights := range state.Nights.Sorted() {
		query.Add("nightRange", nights)
	}
	if state.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*state.MaxPrice, 'f', -1, 64))
	}
	sortBy, sortOrder := mapSort(state.Sort)
	query.Set("sortBy", sortBy)
	query.Set("sortOrder", sortOrder)
	query.Set("limit", strconv.Itoa(PageSize))
	query.Set("offset", strconv.Itoa((state.Page-1)*PageSize))

	body, err := c.get(ctx, searchPath, query)
	if err != nil {
		return nil, err
	}

	var envelope searchEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return envelope.toResultPage(), nil
}

// FilterOptions fetches the four facet option lists, pre-sorted upstream.
func (c *Client) FilterOptions(ctx context.Context) (*types.FacetOptions, error) {
	body, err := c.get(ctx, optionsPath, nil)
	if err != nil {
		return nil, err
	}
	var options types.FacetOptions
	if err := sonic.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("decoding filter options: %w", err)
	}
	return &options, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.baseUrl + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream %s returned %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func mapSort(key types.SortKey) (string, string) {
	switch key {
	case types.SortLowestPrice:
		return "price", "asc"
	case types.SortHighestPrice:
		return "price", "desc"
	case types.SortShortest:
		return "nights", "asc"
	case types.SortLongest:
		return "nights", "desc"
	}
	return "date", "asc"
}
