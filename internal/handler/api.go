package handler

import (
	"net/http"
)

// HandleState returns the caller's session as JSON.
// GET /api/state
// Response: {"view": "...", "selectedLessonId": ..., "lesson": {...}, "metrics": {...}, ...}
func HandleState(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	if s == nil {
		writeError(w, http.StatusUnauthorized, "No session.")
		return
	}
	writeJSON(w, http.StatusOK, toStateDTO(s.Snapshot()))
}
