// Package speech wraps the OpenAI audio endpoints: Whisper for
// speech-to-text and the TTS endpoint for speech synthesis.
package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opencare/medagent/internal/log"
)

// DefaultVoice is used when no TTS voice is configured.
const DefaultVoice = openai.VoiceNova

// Client performs transcription and synthesis through one OpenAI client.
type Client struct {
	api    *openai.Client
	voice  openai.SpeechVoice
	logger log.Logger
}

// New creates a speech client. voice may be empty to use the default.
func New(apiKey, voice string, logger log.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	return newWithConfig(cfg, voice, logger)
}

// newWithConfig allows tests to point the client at a fake endpoint.
func newWithConfig(cfg openai.ClientConfig, voice string, logger log.Logger) *Client {
	v := DefaultVoice
	if voice != "" {
		v = openai.SpeechVoice(voice)
	}
	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		voice:  v,
		logger: logger,
	}
}

// Transcribe converts recorded audio into text. filename carries the
// original upload name so the provider can detect the container format.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}

	c.logger.Debug("audio transcribed", "file", filename, "textLen", len(resp.Text))
	return resp.Text, nil
}

// Synthesize converts text into MP3 audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: c.voice,
	})
	if err != nil {
		return nil, fmt.Errorf("generating speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading speech audio: %w", err)
	}

	c.logger.Debug("speech synthesized", "textLen", len(text), "audioBytes", len(audio))
	return audio, nil
}
