package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/seaward/sailfinder/pkg/alerts"
	"github.com/seaward/sailfinder/pkg/cache"
	"github.com/seaward/sailfinder/pkg/common"
	"github.com/seaward/sailfinder/pkg/facets"
	"github.com/seaward/sailfinder/pkg/tracking"
	"github.com/seaward/sailfinder/pkg/types"
	"github.com/seaward/sailfinder/pkg/urlstate"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_search_cache_hits_total",
		Help: "The total number of search responses served from cache",
	})
	upstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_upstream_errors_total",
		Help: "The total number of search requests that failed upstream",
	})
	alertsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sailfinder_alerts_created_total",
		Help: "The total number of price alerts created",
	})
)

const searchCacheTTL = 5 * time.Minute

type app struct {
	sessions *SessionRegistry
	options  *facets.OptionCache
	cache    cache.Cache
	alerts   *alerts.Client
	tracker  tracking.Tracking
}

type searchResponse struct {
	Query          string                `json:"query"`
	State          types.FilterState     `json:"state"`
	Results        []types.Cruise        `json:"results"`
	TotalCount     int                   `json:"totalCount"`
	AppliedFilters []types.AppliedFilter `json:"appliedFilters"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search serves the listing page data for the page query string. The query is
// normalized through the codec first so shared and hand-typed URLs land on
// the same canonical representation and cache entry.
func (a *app) Search(w http.ResponseWriter, r *http.Request, sessionId int, enc *json.Encoder) error {
	common.DefaultHeaders(w, r, "60")

	state := urlstate.Decode(r.URL.Query())
	canonical := urlstate.Encode(state)
	options := a.options.Options(r.Context())

	cacheKey := state.CacheKey()
	var cached types.SearchResultPage
	if a.cache.Get(r.Context(), cacheKey, &cached) {
		cacheHits.Inc()
		if a.tracker != nil {
			go a.tracker.TrackSearch(sessionId, state, cached.TotalCount, r)
		}
		return enc.Encode(searchResponse{
			Query:          canonical.Encode(),
			State:          state,
			Results:        cached.Items,
			TotalCount:     cached.TotalCount,
			AppliedFilters: facets.Project(state, options),
		})
	}

	controller := a.sessions.Controller(sessionId)
	seq := controller.Navigate(canonical)
	view, err := controller.WaitView(r.Context(), seq)
	if err != nil {
		// WaitView only fails when the request context is done.
		w.WriteHeader(http.StatusGatewayTimeout)
		return enc.Encode(errorResponse{Error: "search timed out"})
	}
	if view.Err {
		upstreamErrors.Inc()
		w.WriteHeader(http.StatusBadGateway)
		return enc.Encode(errorResponse{Error: "search is temporarily unavailable"})
	}

	page := types.SearchResultPage{Items: view.Results, TotalCount: view.TotalCount}
	_ = a.cache.Set(r.Context(), cacheKey, page, searchCacheTTL)
	if a.tracker != nil {
		go a.tracker.TrackSearch(sessionId, state, view.TotalCount, r)
	}

	return enc.Encode(searchResponse{
		Query:          canonical.Encode(),
		State:          state,
		Results:        view.Results,
		TotalCount:     view.TotalCount,
		AppliedFilters: facets.Project(state, options),
	})
}

// FilterOptions serves the facet option lists for pickers.
func (a *app) FilterOptions(w http.ResponseWriter, r *http.Request, sessionId int, enc *json.Encoder) error {
	common.PublicHeaders(w, r, "3600")
	return enc.Encode(a.options.Options(r.Context()))
}

// AppliedFilters serves the chip projection for the page query string.
func (a *app) AppliedFilters(w http.ResponseWriter, r *http.Request, sessionId int, enc *json.Encoder) error {
	common.DefaultHeaders(w, r, "60")
	state := urlstate.Decode(r.URL.Query())
	return enc.Encode(facets.Project(state, a.options.Options(r.Context())))
}

// CreateAlert validates and forwards a price alert to the upstream endpoint
// using the caller's bearer token.
func (a *app) CreateAlert(w http.ResponseWriter, r *http.Request, sessionId int, enc *json.Encoder) error {
	common.DefaultHeaders(w, r, "0")

	var alert alerts.AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return enc.Encode(errorResponse{Error: "invalid request body"})
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	err := a.alerts.Create(r.Context(), token, alert)
	if err != nil {
		var tokenErr alerts.ErrTokenInvalid
		if errors.As(err, &tokenErr) {
			w.WriteHeader(http.StatusUnauthorized)
			return enc.Encode(errorResponse{Error: tokenErr.Error()})
		}
		var invalidErr alerts.ErrInvalidAlert
		if errors.As(err, &invalidErr) {
			w.WriteHeader(http.StatusBadRequest)
			return enc.Encode(errorResponse{Error: invalidErr.Error()})
		}
		w.WriteHeader(http.StatusBadGateway)
		return enc.Encode(errorResponse{Error: "alert service unavailable"})
	}

	alertsCreated.Inc()
	if a.tracker != nil {
		go a.tracker.TrackAlertCreated(sessionId, alert.Name)
	}
	w.WriteHeader(http.StatusCreated)
	return enc.Encode(map[string]string{"status": "created"})
}
