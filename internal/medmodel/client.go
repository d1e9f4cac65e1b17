// Package medmodel provides access to the locally served medical models:
// MedGemma for text generation and LLaVA for vision analysis, both behind
// an Ollama endpoint.
//
// The client returns raw errors to its callers; the tool adapters are
// responsible for converting failures into user-safe fallback text.
package medmodel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/opencare/medagent/internal/log"
)

// Prompt templates wrapped around every model query.
const (
	medicalPromptFormat = "As a medical AI assistant, please analyze the following query and provide " +
		"helpful medical information. Remember to always recommend consulting with healthcare " +
		"professionals for proper diagnosis and treatment.\n\nQuery: %s"

	visionPromptFormat = `As a medical AI assistant analyzing a medical prescription or medical image, please:

1. Carefully examine the image and describe what you see in detail
2. If this is a prescription, list all medicines, dosages, frequency, and instructions you can identify
3. If this is a medical scan/report, describe the findings and any notable features
4. Provide clear, organized information about what is visible in the image
5. Always emphasize that this is for informational purposes only
6. Recommend consulting healthcare professionals for proper medical advice

User's question: %s

Please provide a comprehensive analysis of what you can see in this medical image.`
)

// fallbackAnswer is returned when the model produces an empty response.
const fallbackAnswer = "Unable to process medical query."

// requestTimeout bounds a single generation request. Vision requests get
// double the budget since multimodal generation is slower.
const requestTimeout = 60 * time.Second

// Client queries the medical models served by Ollama.
type Client struct {
	api         *ollama.Client
	textModel   string
	visionModel string
	logger      log.Logger
}

// New creates a client for the Ollama endpoint at host.
func New(host, textModel, visionModel string, logger log.Logger) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("medmodel: logger is required")
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("medmodel: invalid host %q: %w", host, err)
	}

	httpClient := &http.Client{Timeout: 2 * requestTimeout}

	return &Client{
		api:         ollama.NewClient(u, httpClient),
		textModel:   textModel,
		visionModel: visionModel,
		logger:      logger,
	}, nil
}

// QueryMedical sends a text query to the MedGemma model with the medical
// assistant preamble.
func (c *Client) QueryMedical(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	answer, err := c.generate(ctx, &ollama.GenerateRequest{
		Model:  c.textModel,
		Prompt: fmt.Sprintf(medicalPromptFormat, query),
	})
	if err != nil {
		return "", fmt.Errorf("querying medical model: %w", err)
	}

	c.logger.Debug("medical model answered", "model", c.textModel, "resultLen", len(answer))
	return answer, nil
}

// QueryVision sends a prompt plus optional image bytes to the LLaVA model.
// A nil image performs a text-only analysis.
func (c *Client) QueryVision(ctx context.Context, query string, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*requestTimeout)
	defer cancel()

	req := &ollama.GenerateRequest{
		Model:  c.visionModel,
		Prompt: fmt.Sprintf(visionPromptFormat, query),
	}
	if len(image) > 0 {
		req.Images = []ollama.ImageData{image}
	}

	answer, err := c.generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("querying vision model: %w", err)
	}

	c.logger.Debug("vision model answered",
		"model", c.visionModel, "hasImage", len(image) > 0, "resultLen", len(answer))
	return answer, nil
}

// generate performs one non-streaming generation call and collects the
// response text.
func (c *Client) generate(ctx context.Context, req *ollama.GenerateRequest) (string, error) {
	stream := false
	req.Stream = &stream

	var text strings.Builder
	err := c.api.Generate(ctx, req, func(resp ollama.GenerateResponse) error {
		text.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text.String()) == "" {
		return fallbackAnswer, nil
	}
	return text.String(), nil
}
