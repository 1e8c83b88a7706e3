package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cgast/getsready/internal/events"
	"github.com/cgast/getsready/internal/store"
	"github.com/cgast/getsready/pkg/invoice"
)

// handleUpload accepts a multipart form with a CSV or JSON file plus
// optional country and erp context fields, parses and caps the rows,
// and persists the upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBytes)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	rows, err := invoice.Parse(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not parse file: "+err.Error())
		return
	}

	upload := store.Upload{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Country:    formValue(r, "country", "Unknown"),
		ERP:        formValue(r, "erp", "Unknown"),
		RowsParsed: len(rows),
		Rows:       rows,
	}

	if err := s.store.SaveUpload(upload); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.bus.Publish(events.NewEvent(events.EventUploadReceived, map[string]any{
		"upload_id":   upload.ID,
		"rows_parsed": upload.RowsParsed,
		"country":     upload.Country,
		"erp":         upload.ERP,
	}))

	writeJSON(w, http.StatusOK, map[string]any{
		"uploadId":   upload.ID,
		"rowsParsed": upload.RowsParsed,
	})
}

func formValue(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
