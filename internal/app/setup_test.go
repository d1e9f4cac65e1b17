package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opencare/medagent/internal/config"
)

func TestFullModelName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{config.ProviderOllama, "llama3.3", "ollama/llama3.3"},
		{config.ProviderGemini, "gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{config.ProviderOpenAI, "gpt-4o-mini", "openai/gpt-4o-mini"},
	}

	for _, tc := range tests {
		t.Run(tc.provider, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{Provider: tc.provider, ModelName: tc.model}
			assert.Equal(t, tc.want, fullModelName(cfg))
		})
	}
}

func TestAgentName(t *testing.T) {
	t.Parallel()

	a := &App{Config: &config.Config{Provider: config.ProviderOllama}}
	assert.Equal(t, "Genkit + ollama", a.AgentName())
}
