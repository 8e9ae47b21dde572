// Package server exposes the published snapshot over a small JSON API.
// Handlers read whatever snapshot is current and never block on a refresh.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/refresh"
)

type Server struct {
	sched  *refresh.Scheduler
	log    zerolog.Logger
	router *mux.Router
}

func New(sched *refresh.Scheduler, log zerolog.Logger) *Server {
	s := &Server{
		sched: sched,
		log:   log.With().Str("component", "server").Logger(),
	}
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	api.HandleFunc("/usage", s.handleUsage).Methods(http.MethodGet)
	api.HandleFunc("/exceedances", s.handleExceedances).Methods(http.MethodGet)
	api.HandleFunc("/revenue", s.handleRevenue).Methods(http.MethodGet)
	api.HandleFunc("/debit-triage", s.handleDebitTriage).Methods(http.MethodGet)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz reports ready only once a first snapshot has been published.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	if s.sched.Snapshot() == nil {
		http.Error(w, "no snapshot published yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// statusResponse carries freshness metadata. Staleness is judged from the
// heartbeat and last-update timestamps, never inferred from empty tables.
type statusResponse struct {
	Status     string           `json:"status"`
	CycleID    string           `json:"cycle_id,omitempty"`
	LastUpdate *time.Time       `json:"last_update,omitempty"`
	Heartbeat  *time.Time       `json:"heartbeat,omitempty"`
	LastError  string           `json:"last_error,omitempty"`
	RowCounts  map[string]int64 `json:"row_counts,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{Status: s.sched.Status().String()}
	if hb := s.sched.Heartbeat(); !hb.IsZero() {
		resp.Heartbeat = &hb
	}
	if err := s.sched.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	if snap := s.sched.Snapshot(); snap != nil {
		resp.CycleID = snap.CycleID.String()
		resp.LastUpdate = &snap.LastUpdate
		resp.RowCounts = snap.RowCounts
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleRefresh runs a synchronous reload. A failure leaves the previous
// snapshot readable, so the error comes back with 502 rather than tearing
// anything down.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.sched.ForceRefresh(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("forced refresh failed")
		s.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	snap := s.sched.Snapshot()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":   s.sched.Status().String(),
		"cycle_id": snap.CycleID.String(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Metrics)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	src, ok := s.source(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Recon.Usage[src])
}

func (s *Server) handleExceedances(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	src, ok := s.source(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Recon.Exceedances[src])
}

func (s *Server) handleRevenue(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Revenue)
}

func (s *Server) handleDebitTriage(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, snap.Triage)
}

// snapshot fetches the current snapshot or answers 503 when none has been
// published yet.
func (s *Server) snapshot(w http.ResponseWriter) (*refresh.Snapshot, bool) {
	snap := s.sched.Snapshot()
	if snap == nil {
		s.writeJSON(w, http.StatusServiceUnavailable,
			map[string]string{"error": "no snapshot published yet"})
		return nil, false
	}
	return snap, true
}

// source parses the ?source= selector; absent means combined.
func (s *Server) source(w http.ResponseWriter, r *http.Request) (model.Source, bool) {
	raw := r.URL.Query().Get("source")
	if raw == "" {
		return model.SourceCombined, true
	}
	src, err := model.ParseSource(raw)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return 0, false
	}
	return src, true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}
