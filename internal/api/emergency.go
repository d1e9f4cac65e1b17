package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/telephony"
)

// CallReporter places an emergency call and describes the outcome as
// user-facing text.
type CallReporter interface {
	Report(message string) string
}

// EmergencyRequest is the POST /emergency-call request body.
type EmergencyRequest struct {
	Message string `json:"message,omitempty"`
}

// EmergencyResponse is the POST /emergency-call response body.
type EmergencyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EmergencyHandler handles direct emergency call requests, bypassing the
// agent entirely.
type EmergencyHandler struct {
	caller CallReporter
	logger log.Logger
}

// NewEmergencyHandler creates a new emergency call handler.
func NewEmergencyHandler(caller CallReporter, logger log.Logger) *EmergencyHandler {
	return &EmergencyHandler{caller: caller, logger: logger}
}

// RegisterRoutes registers the emergency call route on the given mux.
func (h *EmergencyHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.caller == nil {
		h.logger.Warn("caller not configured, skipping /emergency-call registration")
		return
	}
	mux.HandleFunc("POST /emergency-call", h.call)
}

// call places the call and relays the outcome report. Call failures are
// folded into the report text, so the endpoint answers 200 whenever the
// request itself is well-formed.
func (h *EmergencyHandler) call(w http.ResponseWriter, r *http.Request) {
	var req EmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), h.logger)
		return
	}

	message := req.Message
	if message == "" {
		message = telephony.DefaultMessage
	}

	h.logger.Warn("direct emergency call requested")
	report := h.caller.Report(message)

	writeJSON(w, http.StatusOK, EmergencyResponse{Status: "success", Message: report}, h.logger)
}
