package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mlorentedev/productai/internal/middleware"
)

// errorResponse is the JSON body of every non-2xx answer. RequestID lets a
// caller quote the failing request when reporting it.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	id := middleware.RequestIDFromContext(r.Context())
	if code >= http.StatusInternalServerError {
		slog.Warn("request failed", "request_id", id, "path", r.URL.Path, "status", code, "error", msg)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: msg, RequestID: id})
}
