package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// HTTPError is a response decided inside a handler. It is written verbatim and never
// reported as an internal error.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// NewHTTPError builds an HTTPError with a formatted message.
func NewHTTPError(status int, format string, args ...any) *HTTPError {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// RespondJSON writes payload as JSON.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// MethodNotAllowed answers non-GET calls on read-only API routes.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondText(w, http.StatusMethodNotAllowed, "Method not allowed")
}
