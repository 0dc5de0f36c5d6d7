package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/graph-motif-service/pkg/digraph"
	"github.com/gilchrisn/graph-motif-service/pkg/models"
	"github.com/gilchrisn/graph-motif-service/pkg/service"
)

// Defaults fill in request parameters the client left out
type Defaults struct {
	MotifSize int
	Degree    float64
}

// Handlers contains HTTP request handlers
type Handlers struct {
	motifService *service.MotifService
	defaults     Defaults
}

// NewHandlers creates new API handlers
func NewHandlers(motifService *service.MotifService, defaults Defaults) *Handlers {
	return &Handlers{
		motifService: motifService,
		defaults:     defaults,
	}
}

// HealthCheck reports that the service is up
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"groups":    len(h.motifService.Groups()),
	}
	WriteSuccessResponse(w, "Service is healthy", health)
}

// ListGroups lists the cohort/metric groups of the loaded dataset
func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups := h.motifService.Groups()
	if groups == nil {
		groups = []models.GroupKey{}
	}
	WriteSuccessResponse(w, "Groups retrieved successfully", groups)
}

// FindMotifs returns the motif distribution of one group
func (h *Handlers) FindMotifs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := service.FindRequest{
		Group:     models.GroupKey{Cohort: vars["cohort"], Metric: vars["metric"]},
		MotifSize: h.defaults.MotifSize,
		Degree:    h.defaults.Degree,
	}

	query := r.URL.Query()
	if s := query.Get("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid size parameter", err)
			return
		}
		req.MotifSize = size
	}
	if s := query.Get("degree"); s != "" {
		degree, err := strconv.ParseFloat(s, 64)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid degree parameter", err)
			return
		}
		req.Degree = degree
	}
	if s := query.Get("random"); s != "" {
		random, err := strconv.ParseBool(s)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid random parameter", err)
			return
		}
		req.Random = random
	}

	log.Info().
		Str("group", req.Group.String()).
		Int("size", req.MotifSize).
		Float64("degree", req.Degree).
		Bool("random", req.Random).
		Msg("Motif request received")

	result, err := h.motifService.Find(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("group", req.Group.String()).Msg("Motif finding failed")
		WriteErrorResponse(w, StatusFor(err), "Motif finding failed", err)
		return
	}

	WriteSuccessResponse(w, "Motif distribution retrieved successfully", result)
}

// CreateComparison runs a multi-group comparison
func (h *Handlers) CreateComparison(w http.ResponseWriter, r *http.Request) {
	req := service.CompareRequest{
		MotifSize: h.defaults.MotifSize,
		Degree:    h.defaults.Degree,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid JSON request", err)
		return
	}

	log.Info().
		Strs("metrics", req.Metrics).
		Strs("cohorts", req.Cohorts).
		Bool("edge_swap", req.EdgeSwap).
		Msg("Comparison request received")

	report, err := h.motifService.Compare(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("Comparison failed")
		WriteErrorResponse(w, StatusFor(err), "Comparison failed", err)
		return
	}

	WriteSuccessResponse(w, "Comparison completed successfully", report)
}

// GetPattern decodes a pattern id into its edge list
func (h *Handlers) GetPattern(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["patternId"])
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid pattern id", err)
		return
	}

	size := h.defaults.MotifSize
	if s := r.URL.Query().Get("size"); s != "" {
		if size, err = strconv.Atoi(s); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "Invalid size parameter", err)
			return
		}
	}

	g, err := digraph.FromPatternID(id, size)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid pattern", err)
		return
	}

	WriteSuccessResponse(w, "Pattern decoded successfully", map[string]interface{}{
		"id":    id,
		"size":  size,
		"edges": g.Edges(),
	})
}
