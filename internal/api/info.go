package api

import (
	"net/http"

	"github.com/opencare/medagent/internal/log"
)

// InfoResponse is the GET / response body.
type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Agent   string `json:"agent"`
}

// InfoHandler answers the root info / liveness endpoint.
type InfoHandler struct {
	version string
	agent   string
	logger  log.Logger
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(version, agent string) *InfoHandler {
	return &InfoHandler{version: version, agent: agent, logger: log.NewNop()}
}

// RegisterRoutes registers the root route on the given mux.
func (h *InfoHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.info)
}

func (h *InfoHandler) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Message: "Agentic AI Medical Consulting API is running",
		Version: h.version,
		Agent:   h.agent,
	}, h.logger)
}
