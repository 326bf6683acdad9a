package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/lead-sites-etl/internal/adapter/boundary"
	"github.com/couchcryptid/lead-sites-etl/internal/domain"
	"github.com/couchcryptid/lead-sites-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResultProvider exposes the latest completed run. *pipeline.Pipeline
// satisfies it.
type ResultProvider interface {
	sharedobs.ReadinessChecker
	Latest() *pipeline.Result
}

// Server exposes health, readiness, metrics and the cleaned dataset.
type Server struct {
	httpServer         *http.Server
	results            ResultProvider
	populationProperty string
	logger             *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 dataset routes.
func NewServer(addr string, results ResultProvider, populationProperty string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		results:            results,
		populationProperty: populationProperty,
		logger:             logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(results))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/sites", s.handleSites)
	mux.HandleFunc("GET /v1/regions", s.handleRegions)
	mux.HandleFunc("GET /v1/report", s.handleReport)

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

// handleSites returns the geolocated records as flat rows, optionally
// restricted to one month with ?month=1..12.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	res, ok := s.latest(w)
	if !ok {
		return
	}

	records := res.Dataset.Records
	if q := r.URL.Query().Get("month"); q != "" {
		month, err := strconv.Atoi(q)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "month must be an integer between 1 and 12")
			return
		}
		records = domain.RecordsForMonth(records, month)
	}

	rows := make([]map[string]string, len(records))
	for i := range records {
		rows[i] = records[i].RowMap()
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"run_id":  res.Dataset.RunID,
		"count":   len(rows),
		"records": rows,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.latest(w)
	if !ok {
		return
	}

	data, err := boundary.FeatureCollection(res.Dataset.Regions, s.populationProperty).MarshalJSON()
	if err != nil {
		s.logger.Error("marshal regions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not encode regions")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client went away
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.latest(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res.Report)
}

func (s *Server) latest(w http.ResponseWriter) (*pipeline.Result, bool) {
	res := s.results.Latest()
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, pipeline.ErrNotReady.Error())
		return nil, false
	}
	return res, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
