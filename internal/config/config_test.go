package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config that passes Validate().
func validConfig() *Config {
	return &Config{
		Provider:      ProviderOllama,
		ModelName:     "llama3.3",
		AgentTimeout:  DefaultAgentTimeout,
		MaxTurns:      DefaultMaxTurns,
		MaxWorkers:    DefaultMaxWorkers,
		OllamaHost:    "http://localhost:11434",
		MedGemmaModel: "gemma:7b",
		LLaVAModel:    "llava:7b",
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "bedrock" },
			wantErr: ErrInvalidProvider,
		},
		{
			name:    "empty model name",
			mutate:  func(c *Config) { c.ModelName = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty medgemma model",
			mutate:  func(c *Config) { c.MedGemmaModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty llava model",
			mutate:  func(c *Config) { c.LLaVAModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty ollama host",
			mutate:  func(c *Config) { c.OllamaHost = "" },
			wantErr: ErrInvalidOllamaHost,
		},
		{
			name:    "timeout too small",
			mutate:  func(c *Config) { c.AgentTimeout = 10 * time.Millisecond },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout too large",
			mutate:  func(c *Config) { c.AgentTimeout = time.Hour },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero max turns",
			mutate:  func(c *Config) { c.MaxTurns = 0 },
			wantErr: ErrInvalidMaxTurns,
		},
		{
			name:    "zero max workers",
			mutate:  func(c *Config) { c.MaxWorkers = 0 },
			wantErr: ErrInvalidMaxWorkers,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestTelephonyConfigured(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.False(t, cfg.TelephonyConfigured())

	cfg.TwilioAccountSID = "AC123"
	cfg.TwilioAuthToken = "token"
	cfg.TwilioFromNumber = "+15550001111"
	assert.False(t, cfg.TelephonyConfigured(), "emergency contact still missing")

	cfg.EmergencyContact = "+15550002222"
	assert.True(t, cfg.TelephonyConfigured())
}
