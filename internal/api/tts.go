package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/opencare/medagent/internal/log"
)

// Synthesizer converts text into spoken audio (MP3 bytes).
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// TTSRequest is the POST /tts request body.
type TTSRequest struct {
	Text string `json:"text"`
}

// TTSHandler handles text-to-speech requests.
type TTSHandler struct {
	synthesizer Synthesizer
	logger      log.Logger
}

// NewTTSHandler creates a new text-to-speech handler.
func NewTTSHandler(synthesizer Synthesizer, logger log.Logger) *TTSHandler {
	return &TTSHandler{synthesizer: synthesizer, logger: logger}
}

// RegisterRoutes registers the tts route on the given mux.
// Without a synthesizer the route is not registered.
func (h *TTSHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.synthesizer == nil {
		h.logger.Warn("synthesizer not configured, skipping /tts registration")
		return
	}
	mux.HandleFunc("POST /tts", h.speak)
}

// speak returns the synthesized audio as an audio/mpeg attachment.
func (h *TTSHandler) speak(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), h.logger)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required", h.logger)
		return
	}

	audio, err := h.synthesizer.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating speech: %v", err), h.logger)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", "attachment; filename=speech.mp3")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(audio); err != nil {
		h.logger.Debug("failed to write audio response", "error", err)
	}
}
