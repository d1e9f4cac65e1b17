package medmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencare/medagent/internal/log"
)

// generatePayload mirrors the fields of the Ollama generate request we care
// about in tests.
type generatePayload struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"` // base64 on the wire
}

// newFakeOllama starts an HTTP server that answers /api/generate with the
// given response text and records the last request payload.
func newFakeOllama(t *testing.T, response string) (*httptest.Server, *generatePayload) {
	t.Helper()

	last := &generatePayload{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(last))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    last.Model,
			"response": response,
			"done":     true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, last
}

func newTestClient(t *testing.T, host string) *Client {
	t.Helper()

	c, err := New(host, "gemma:7b", "llava:7b", log.NewNop())
	require.NoError(t, err)
	return c
}

func TestQueryMedical(t *testing.T) {
	t.Parallel()

	srv, last := newFakeOllama(t, "Drink fluids and rest.")
	c := newTestClient(t, srv.URL)

	answer, err := c.QueryMedical(context.Background(), "What helps with a cold?")
	require.NoError(t, err)

	assert.Equal(t, "Drink fluids and rest.", answer)
	assert.Equal(t, "gemma:7b", last.Model)
	assert.Contains(t, last.Prompt, "What helps with a cold?")
	assert.Contains(t, last.Prompt, "consulting with healthcare professionals")
	assert.Empty(t, last.Images)
}

func TestQueryMedical_EmptyResponseFallsBack(t *testing.T) {
	t.Parallel()

	srv, _ := newFakeOllama(t, "   ")
	c := newTestClient(t, srv.URL)

	answer, err := c.QueryMedical(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, fallbackAnswer, answer)
}

func TestQueryMedical_ServerDown(t *testing.T) {
	t.Parallel()

	srv, _ := newFakeOllama(t, "unused")
	srv.Close()
	c := newTestClient(t, srv.URL)

	_, err := c.QueryMedical(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying medical model")
}

func TestQueryVision_WithImage(t *testing.T) {
	t.Parallel()

	srv, last := newFakeOllama(t, "The prescription lists amoxicillin 500mg.")
	c := newTestClient(t, srv.URL)

	answer, err := c.QueryVision(context.Background(), "what medicines are in this image", []byte{0x89, 0x50})
	require.NoError(t, err)

	assert.Contains(t, answer, "amoxicillin")
	assert.Equal(t, "llava:7b", last.Model)
	assert.Len(t, last.Images, 1)
	assert.Contains(t, last.Prompt, "what medicines are in this image")
}

func TestQueryVision_WithoutImage(t *testing.T) {
	t.Parallel()

	srv, last := newFakeOllama(t, "General guidance.")
	c := newTestClient(t, srv.URL)

	_, err := c.QueryVision(context.Background(), "describe image analysis", nil)
	require.NoError(t, err)
	assert.Empty(t, last.Images)
}

func TestNew_InvalidHost(t *testing.T) {
	t.Parallel()

	_, err := New("://bad", "m", "v", log.NewNop())
	assert.Error(t, err)
}
