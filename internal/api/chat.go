package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"

	// Image formats the gateway can describe on upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/opencare/medagent/internal/agent"
	"github.com/opencare/medagent/internal/log"
)

// MaxChatBodyBytes bounds the chat request body. Base64 inflates images by
// roughly a third, so this allows images of about 12 MB.
const MaxChatBodyBytes = 16 << 20

// QueryRunner processes one medical query into a response envelope.
type QueryRunner interface {
	Handle(ctx context.Context, q agent.Query) agent.Result
}

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	Message   string `json:"message"`
	HasImage  bool   `json:"has_image"`
	ImageData string `json:"image_data,omitempty"` // base64-encoded
}

// ChatResponse is the POST /chat response body.
type ChatResponse struct {
	Response     string `json:"response"`
	Source       string `json:"source"`
	ToolUsed     string `json:"tool_used,omitempty"`
	HasEmergency bool   `json:"has_emergency"`
}

// ChatHandler handles the medical chat endpoint.
type ChatHandler struct {
	queries QueryRunner
	logger  log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(queries QueryRunner, logger log.Logger) *ChatHandler {
	return &ChatHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the chat route on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.send)
}

// send decodes the request, derives the image context when an image rides
// along, and forwards the query to the orchestrator. Image problems never
// fail the request; they degrade to an error context string so the agent
// can still answer the text.
func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxChatBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), h.logger)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required", h.logger)
		return
	}

	q := agent.Query{Message: req.Message, HasImage: req.HasImage}
	if req.HasImage && req.ImageData != "" {
		q.ImageContext, q.ImageBytes = decodeImage(req.ImageData, h.logger)
	}

	h.logger.Info("chat request received",
		"message_length", len(req.Message),
		"has_image", req.HasImage,
	)

	res := h.queries.Handle(r.Context(), q)

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:     res.Response,
		Source:       res.Source,
		ToolUsed:     res.ToolUsed,
		HasEmergency: res.HasEmergency,
	}, h.logger)
}

// decodeImage turns base64 image data into a context string plus raw bytes.
// The context names the format and pixel dimensions, e.g.
// "Medical image uploaded - Format: PNG, Size: (640, 480)". Any decode
// failure yields an error context instead; bytes survive a failed header
// parse so the vision model can still try them.
func decodeImage(data string, logger log.Logger) (string, []byte) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		logger.Error("image base64 decode failed", "error", err)
		return fmt.Sprintf("Image processing error: %v", err), nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		logger.Error("image header decode failed", "error", err)
		return fmt.Sprintf("Image processing error: %v", err), raw
	}

	context := fmt.Sprintf("Medical image uploaded - Format: %s, Size: (%d, %d)",
		strings.ToUpper(format), cfg.Width, cfg.Height)
	logger.Info("image processed", "format", format, "width", cfg.Width, "height", cfg.Height)
	return context, raw
}
