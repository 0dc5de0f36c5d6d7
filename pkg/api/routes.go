package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the API on router. Metrics are served from registry
// when it is not nil.
func SetupRoutes(router *mux.Router, handlers *Handlers, registry *prometheus.Registry) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	groups := api.PathPrefix("/groups").Subrouter()
	groups.HandleFunc("", handlers.ListGroups).Methods("GET")
	groups.HandleFunc("/{cohort}/{metric}/motifs", handlers.FindMotifs).Methods("GET")

	api.HandleFunc("/comparisons", handlers.CreateComparison).Methods("POST")
	api.HandleFunc("/patterns/{patternId:[0-9]+}", handlers.GetPattern).Methods("GET")

	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS middleware answers preflight requests
	}).Methods("OPTIONS")

	if registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")
	}
}
