// Package tools provides the medical tool set registered with the agent.
//
// Each tool is a single-purpose, text-in/text-out adapter over one external
// capability (generation, vision, telephony, or a static lookup). Tools
// contain the safety posture of the system: upstream failures are converted
// to user-safe fallback text at the tool boundary and are never surfaced to
// the agent loop as errors. Every fallback message recommends contacting a
// healthcare professional or emergency services directly.
package tools

import (
	"context"
	"strings"

	"github.com/opencare/medagent/internal/log"
)

// MedicalModel is the slice of the medical model client used by tools.
type MedicalModel interface {
	// QueryMedical answers a free-text medical query.
	QueryMedical(ctx context.Context, query string) (string, error)

	// QueryVision analyzes an optional image against a prompt.
	// A nil image performs a text-only analysis.
	QueryVision(ctx context.Context, query string, image []byte) (string, error)
}

// CallPlacer places one outbound emergency call and returns the provider
// call identifier.
type CallPlacer interface {
	Place(message string) (string, error)
}

// ImageSource yields image bytes staged for the current request.
type ImageSource interface {
	// Take reads and removes the payload staged under key.
	Take(key string) (data []byte, ok bool)
}

// Handler holds the dependencies shared by all tool implementations.
// Tool methods are plain methods so they can be tested without a Genkit
// instance; registration wires them up as Genkit tools.
type Handler struct {
	model  MedicalModel
	caller CallPlacer
	images ImageSource
	logger log.Logger
}

// NewHandler creates the tool handler. All dependencies are required.
func NewHandler(model MedicalModel, caller CallPlacer, images ImageSource, logger log.Logger) *Handler {
	return &Handler{
		model:  model,
		caller: caller,
		images: images,
		logger: logger,
	}
}

// audit logs one tool invocation with enough structure for audit trails:
// tool name, truncated input, result length. Observability only; it has no
// control-flow effect.
func (h *Handler) audit(tool, input, result string) {
	h.logger.Info("tool invoked",
		"tool", tool,
		"input", truncate(input, 100),
		"resultLen", len(result),
	)
}

// truncate shortens s to at most n bytes for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
