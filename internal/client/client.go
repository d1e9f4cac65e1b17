// Package client is the HTTP client for the medical assistant gateway,
// used by the terminal chat UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/opencare/medagent/internal/api"
	"github.com/opencare/medagent/internal/log"
)

// DefaultTimeout covers one round trip. The gateway folds agent timeouts
// into 200 responses well before this fires, so it only guards against a
// dead server.
const DefaultTimeout = 150 * time.Second

// Client talks to a running gateway.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// New creates a client for the gateway at baseURL (e.g. "http://127.0.0.1:8080").
func New(baseURL string, logger log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
}

// Info fetches the root service info, doubling as a reachability check.
func (c *Client) Info(ctx context.Context) (*api.InfoResponse, error) {
	var info api.InfoResponse
	if err := c.getJSON(ctx, "/", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Chat sends one message, optionally with a base64-encoded image, and
// returns the gateway's response envelope.
func (c *Client) Chat(ctx context.Context, message, imageData string) (*api.ChatResponse, error) {
	req := api.ChatRequest{
		Message:   message,
		HasImage:  imageData != "",
		ImageData: imageData,
	}

	var resp api.ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transcribe uploads recorded audio and returns its transcript.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio_file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voice", &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp api.TranscriptResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Synthesize converts text to MP3 audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(api.TTSRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

// EmergencyCall triggers a direct emergency call and returns the outcome
// report text.
func (c *Client) EmergencyCall(ctx context.Context, message string) (string, error) {
	var resp api.EmergencyResponse
	if err := c.postJSON(ctx, "/emergency-call", api.EmergencyRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError turns a non-200 response into an error carrying the
// gateway's detail message when one is present.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er api.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != "" {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, er.Detail)
	}
	return fmt.Errorf("gateway returned %d", resp.StatusCode)
}
