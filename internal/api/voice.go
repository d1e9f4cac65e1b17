package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/opencare/medagent/internal/log"
)

// MaxVoiceBodyBytes bounds voice uploads.
const MaxVoiceBodyBytes = 32 << 20

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, r io.Reader) (string, error)
}

// TranscriptResponse is the POST /voice response body.
type TranscriptResponse struct {
	Text string `json:"text"`
}

// VoiceHandler handles audio transcription uploads.
type VoiceHandler struct {
	transcriber Transcriber
	logger      log.Logger
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(transcriber Transcriber, logger log.Logger) *VoiceHandler {
	return &VoiceHandler{transcriber: transcriber, logger: logger}
}

// RegisterRoutes registers the voice route on the given mux.
// Without a transcriber the route is not registered.
func (h *VoiceHandler) RegisterRoutes(mux *http.ServeMux) {
	if h.transcriber == nil {
		h.logger.Warn("transcriber not configured, skipping /voice registration")
		return
	}
	mux.HandleFunc("POST /voice", h.transcribe)
}

// transcribe reads the multipart "audio_file" part and returns its transcript.
func (h *VoiceHandler) transcribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxVoiceBodyBytes)

	file, header, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("audio_file is required: %v", err), h.logger)
		return
	}
	defer file.Close()

	h.logger.Info("transcribing audio upload", "filename", header.Filename, "size", header.Size)

	text, err := h.transcriber.Transcribe(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("transcription failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error transcribing audio: %v", err), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, TranscriptResponse{Text: text}, h.logger)
}
