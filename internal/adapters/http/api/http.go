// Package api exposes planning progress over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/staffing/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	StatsProvider
	PlanProvider
}

// Server wires HTTP routes for the progress API.
type Server struct {
	healthHandler  *HealthHandler
	metricsHandler http.Handler
	statsHandler   *StatsHandler
	planHandler    *PlanHandler
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		metricsHandler: NewMetricsHandler(),
		statsHandler:   NewStatsHandler(deps),
		planHandler:    NewPlanHandler(deps),
		logger:         logger.Get().Named("api"),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.route("healthz", s.healthHandler.HandleHealth))
	mux.Handle("/metrics", s.metricsHandler)
	mux.HandleFunc("/stats", s.route("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("/plan", s.route("plan", s.planHandler.HandlePlan))
	s.logRegistration(ctx, "/healthz", "/metrics", "/stats", "/plan")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
