package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/seaward/sailfinder/pkg/common"
)

// routes builds the gateway mux. Method-prefixed patterns would answer CORS
// preflights with 405, so OPTIONS is routed explicitly for the whole api
// subtree.
func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("OPTIONS /api/", common.RespondToOptions)
	mux.HandleFunc("GET /api/search", common.JsonHandler(a.tracker, a.Search))
	mux.HandleFunc("GET /api/filter-options", common.JsonHandler(a.tracker, a.FilterOptions))
	mux.HandleFunc("GET /api/applied-filters", common.JsonHandler(a.tracker, a.AppliedFilters))
	mux.HandleFunc("POST /api/alerts", common.JsonHandler(a.tracker, a.CreateAlert))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
