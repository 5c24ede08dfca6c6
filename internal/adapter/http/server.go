package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/couchcryptid/charging-need-service/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LayerService serves computed map layers.
type LayerService interface {
	ReadinessChecker
	HeatLayer(kind domain.LayerKind, minPowerKW float64) (domain.HeatLayer, error)
	NeedLayer(params domain.NeedParams, minNeed float64) (domain.NeedLayer, error)
	NeedDefaults() domain.NeedParams
}

// Server exposes health, readiness, metrics, and layer HTTP endpoints.
type Server struct {
	httpServer *http.Server
	layers     LayerService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /layers/* routes.
func NewServer(addr string, layers LayerService, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		layers: layers,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(layers))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /layers/need", s.handleNeedLayer)
	mux.HandleFunc("GET /layers/{name}", s.handleHeatLayer)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// layerResponse is the wire shape shared by every layer endpoint.
type layerResponse struct {
	Layer       domain.LayerKind   `json:"layer"`
	GeneratedAt time.Time          `json:"generated_at"`
	Count       int                `json:"count"`
	Params      *domain.NeedParams `json:"params,omitempty"`
	Points      any                `json:"points"`
}

func (s *Server) handleHeatLayer(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r.URL.Query())
	minPower := q.float("min_power_kw", 0, nonNegative)
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err)
		return
	}

	layer, err := s.layers.HeatLayer(domain.LayerKind(r.PathValue("name")), minPower)
	if err != nil {
		s.writeLayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layerResponse{
		Layer:       layer.Kind,
		GeneratedAt: layer.GeneratedAt,
		Count:       len(layer.Points),
		Points:      layer.Points,
	})
}

func (s *Server) handleNeedLayer(w http.ResponseWriter, r *http.Request) {
	defaults := s.layers.NeedDefaults()
	q := newQuery(r.URL.Query())
	params := domain.NeedParams{
		RadiusMeters: q.float("radius_meters", defaults.RadiusMeters, positive),
		Alpha:        q.float("alpha", defaults.Alpha, nonNegative),
		Beta:         q.float("beta", defaults.Beta, nonNegative),
		Gamma:        q.float("gamma", defaults.Gamma, nonNegative),
		Delta:        q.float("delta", defaults.Delta, nonNegative),
	}
	minNeed := q.float("min_need", 0, unitInterval)
	if q.err != nil {
		writeError(w, http.StatusBadRequest, q.err)
		return
	}

	layer, err := s.layers.NeedLayer(params, minNeed)
	if err != nil {
		s.writeLayerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layerResponse{
		Layer:       layer.Kind,
		GeneratedAt: layer.GeneratedAt,
		Count:       len(layer.Points),
		Params:      &layer.Params,
		Points:      layer.Points,
	})
}

func (s *Server) writeLayerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, pipeline.ErrUnknownLayer):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("layer request failed", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
