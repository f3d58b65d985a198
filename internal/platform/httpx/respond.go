// Package httpx provides JSON response utilities and the API error envelope.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// APIError is the wire shape for every non-2xx response:
// a request path, a millisecond timestamp, a localized message and, for
// validation failures only, a field-to-message map.
type APIError struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timestamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends the standard error envelope without field violations.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, status, APIError{
		Path:      r.URL.Path,
		Timestamp: time.Now().UnixMilli(),
		Message:   message,
	})
}

// ValidationError sends a 400 envelope carrying per-field violations.
func ValidationError(w http.ResponseWriter, r *http.Request, message string, violations map[string]string) {
	JSON(w, http.StatusBadRequest, APIError{
		Path:             r.URL.Path,
		Timestamp:        time.Now().UnixMilli(),
		Message:          message,
		ValidationErrors: violations,
	})
}

// DecodeJSON decodes the JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
