// Package httpapi serves the administrative HTTP surface of the sync
// engine.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// jsonError is the wire shape of every error response.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError renders an error response with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}
