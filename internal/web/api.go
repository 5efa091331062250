package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/roasbeef/elucidate/internal/interpret"
)

// jobStatusResponse is the JSON body for the job polling endpoint.
type jobStatusResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// apiError represents an API error response.
type apiError struct {
	Error string `json:"error"`
}

// handleJobStatus serves GET /api/v1/jobs/{id}: the polling fallback for
// loading pages that cannot hold a WebSocket open.
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed,
			apiError{Error: "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest,
			apiError{Error: "invalid job ID"})
		return
	}

	job, ok := s.jobs.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound,
			apiError{Error: "job not found"})
		return
	}

	writeJSON(w, http.StatusOK, jobStatusResponse{
		ID:    job.ID,
		State: string(job.State),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// jobIsDone reports whether the given job has completed.
func (s *Server) jobIsDone(id string) bool {
	job, ok := s.jobs.Get(id)
	return ok && job.State == interpret.JobDone
}
