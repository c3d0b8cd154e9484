package gateway

import (
	"encoding/json"
	"net/http"
)

// Response is the JSON body returned for every inbound webhook request.
type Response struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Canonical error bodies of the inbound wire contract.
const (
	errMethodNotAllowed = "Method not allowed. Use POST."
	errUnauthorized     = "Unauthorized"
	errInvalidJSON      = "Invalid JSON body"
	errInvalidFormat    = "Invalid message format. Required: messageId, senderId"
	errInternal         = "Internal error processing message"
)

func respondJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleNotFound returns a 404 for paths with no registered webhook route.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}
