package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// apiError is the error body shape: {"error": "...", "more_info": {...}}.
// more_info is omitted when empty.
type apiError struct {
	Error    string         `json:"error"`
	MoreInfo map[string]any `json:"more_info,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, moreInfo map[string]any) {
	writeJSON(w, status, apiError{Error: message, MoreInfo: moreInfo})
}
