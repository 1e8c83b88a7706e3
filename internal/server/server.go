// Package server exposes the readiness analyzer over a small REST API.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/cgast/getsready/internal/config"
	"github.com/cgast/getsready/internal/events"
	"github.com/cgast/getsready/internal/store"
	"github.com/cgast/getsready/pkg/gets"
	"github.com/cgast/getsready/pkg/suggest"
)

// Server is the analysis API server.
type Server struct {
	cfg       config.Config
	store     *store.Store
	bus       events.EventBus
	suggester suggest.Suggester
	schema    gets.Schema
	mux       *http.ServeMux
	startTime time.Time
}

// New creates a new API server.
func New(cfg config.Config, st *store.Store, bus events.EventBus, suggester suggest.Suggester, schema gets.Schema) *Server {
	if suggester != nil {
		suggester = eventingSuggester{inner: suggester, bus: bus}
	}
	s := &Server{
		cfg:       cfg,
		store:     st,
		bus:       bus,
		suggester: suggester,
		schema:    schema,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}

	s.mux.HandleFunc("/api/upload", s.handleUpload)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/report/", s.handleReport)
	s.mux.HandleFunc("/api/reports", s.handleReports)
	s.mux.HandleFunc("/api/activity", s.handleActivity)
	s.mux.HandleFunc("/api/status", s.handleStatus)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start begins serving on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"schema_version": s.schema.Version,
		"ai_enabled":     s.cfg.AI.Enabled,
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	history := s.bus.History(time.Time{})
	if history == nil {
		history = []events.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing useful left to do.
		return
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
