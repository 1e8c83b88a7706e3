package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/cgast/getsready/internal/events"
	"github.com/cgast/getsready/internal/store"
	"github.com/cgast/getsready/pkg/report"
	"github.com/cgast/getsready/pkg/scoring"
	"github.com/cgast/getsready/pkg/suggest"
)

// eventingSuggester reports collaborator failures on the activity bus.
// The coverage matcher still applies its own template fallback; this
// only makes the degradation visible.
type eventingSuggester struct {
	inner suggest.Suggester
	bus   events.EventBus
}

func (e eventingSuggester) Suggest(ctx context.Context, target, candidate string, confidence float64) (string, error) {
	text, err := e.inner.Suggest(ctx, target, candidate, confidence)
	if err != nil {
		e.bus.Publish(events.NewEvent(events.EventSuggestFallback, map[string]any{
			"target":    target,
			"candidate": candidate,
			"error":     err.Error(),
		}))
	}
	return text, err
}

type analyzeRequest struct {
	UploadID      string                `json:"uploadId"`
	Questionnaire scoring.Questionnaire `json:"questionnaire"`
}

// handleAnalyze runs the readiness pipeline over a stored upload and
// persists the resulting report. The report is fully assembled in
// memory before the write; a failure mid-pipeline stores nothing.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UploadID == "" {
		writeError(w, http.StatusBadRequest, "uploadId is required")
		return
	}

	upload, err := s.store.GetUpload(req.UploadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "upload not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.bus.Publish(events.NewEvent(events.EventAnalyzeStart, map[string]any{
		"upload_id": upload.ID,
	}))

	rep := report.Build(r.Context(), report.BuildInput{
		Rows:          upload.Rows,
		Schema:        s.schema,
		Questionnaire: req.Questionnaire,
		Suggester:     s.suggester,
		Meta: report.Meta{
			AIEnabled: s.cfg.AI.Enabled,
			Country:   upload.Country,
			ERP:       upload.ERP,
			DB:        "bbolt",
		},
	})

	rec := store.ReportRecord{
		ID:            rep.ReportID,
		UploadID:      upload.ID,
		ScoresOverall: rep.Scores.Overall,
		CreatedAt:     time.Now().UTC(),
		Report:        rep,
	}
	if err := s.store.SaveReport(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.bus.Publish(events.NewEvent(events.EventReportStored, map[string]any{
		"report_id": rep.ReportID,
		"upload_id": upload.ID,
		"overall":   rep.Scores.Overall,
	}))
	s.bus.Publish(events.NewEvent(events.EventAnalyzeComplete, map[string]any{
		"report_id": rep.ReportID,
	}))

	writeJSON(w, http.StatusOK, rep)
}

// handleReport serves a stored report by ID.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/report/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	rep, err := s.store.GetReport(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleReports lists recent report summaries, newest first.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := s.cfg.Reports.RecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	summaries, err := s.store.ListRecentReports(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if summaries == nil {
		summaries = []store.ReportSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}
