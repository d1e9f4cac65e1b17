package api

import (
	"encoding/json"
	"net/http"

	"github.com/opencare/medagent/internal/log"
)

// writeJSON writes a JSON response with the given status code.
// Encoding failures after WriteHeader cannot reach the client anymore,
// so they are only logged.
func writeJSON(w http.ResponseWriter, status int, data any, logger log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// writeError writes a JSON error response with a detail message.
func writeError(w http.ResponseWriter, status int, detail string, logger log.Logger) {
	writeJSON(w, status, ErrorResponse{Detail: detail}, logger)
}
