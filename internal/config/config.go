// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.medagent/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: agent provider/model selection, agent timeout, reasoning turns
//   - Medical models: MedGemma and LLaVA model names plus the Ollama host
//     that serves them
//   - Telephony: Twilio credentials, caller number, emergency contact
//   - Speech: OpenAI API key and TTS voice
//   - Server: listen address, CORS origins, OTLP trace endpoint
//
// Security: credentials are bound from environment variables only and are
// never logged. Validation is fail-fast with sentinel errors for
// errors.Is() checks.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates a model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTimeout indicates the agent timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid agent timeout")

	// ErrInvalidMaxTurns indicates the reasoning turn bound is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")

	// ErrInvalidMaxWorkers indicates the worker bound is out of range.
	ErrInvalidMaxWorkers = errors.New("invalid max workers")

	// ErrInvalidOllamaHost indicates the Ollama host is empty.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Default bounds for the agent invocation.
const (
	// DefaultAgentTimeout bounds a single agent invocation.
	DefaultAgentTimeout = 90 * time.Second

	// DefaultMaxTurns bounds the agent's internal reasoning loop.
	DefaultMaxTurns = 10

	// DefaultMaxWorkers bounds concurrent agent invocations.
	DefaultMaxWorkers = 8
)

// Config stores application configuration.
// SECURITY: credential fields must never be logged or serialized.
type Config struct {
	// Agent provider and model configuration
	Provider  string `mapstructure:"provider"`   // "ollama" (default), "gemini", "openai"
	ModelName string `mapstructure:"model_name"` // agent model (e.g. "gpt-4o-mini", "gemini-2.5-flash")

	// Agent invocation bounds
	AgentTimeout time.Duration `mapstructure:"agent_timeout"`
	MaxTurns     int           `mapstructure:"max_turns"`
	MaxWorkers   int           `mapstructure:"max_workers"`

	// Medical model endpoints (served by Ollama)
	OllamaHost    string `mapstructure:"ollama_host"`
	MedGemmaModel string `mapstructure:"medgemma_model"`
	LLaVAModel    string `mapstructure:"llava_model"`

	// Telephony (Twilio); all four are required for call placement,
	// missing values degrade to a "configuration missing" tool result.
	TwilioAccountSID string `mapstructure:"twilio_account_sid"` // SENSITIVE
	TwilioAuthToken  string `mapstructure:"twilio_auth_token"`  // SENSITIVE
	TwilioFromNumber string `mapstructure:"twilio_from_number"`
	EmergencyContact string `mapstructure:"emergency_contact"`

	// Speech (OpenAI Whisper + TTS)
	OpenAIAPIKey string `mapstructure:"openai_api_key"` // SENSITIVE
	TTSVoice     string `mapstructure:"tts_voice"`

	// Server configuration
	ListenAddr  string   `mapstructure:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Observability (optional; empty disables tracing)
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
	Environment  string `mapstructure:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".medagent")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderOllama)
	v.SetDefault("model_name", "llama3.3")
	v.SetDefault("agent_timeout", DefaultAgentTimeout)
	v.SetDefault("max_turns", DefaultMaxTurns)
	v.SetDefault("max_workers", DefaultMaxWorkers)

	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("medgemma_model", "gemma:7b")
	v.SetDefault("llava_model", "llava:7b")

	v.SetDefault("tts_voice", "nova")

	v.SetDefault("listen_addr", "127.0.0.1:8080")
	// Development posture: all origins allowed (gateway is fronted by the
	// chat client during development).
	v.SetDefault("cors_origins", []string{"*"})

	v.SetDefault("service_name", "medagent")
	v.SetDefault("environment", "dev")
}

// bindEnvVariables binds environment variables explicitly.
// Credentials are supplied exclusively through the environment; the agent
// provider API key (GEMINI_API_KEY / OPENAI_API_KEY) is also read directly
// by the Genkit provider plugin.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("twilio_account_sid", "TWILIO_ACCOUNT_SID")
	mustBind("twilio_auth_token", "TWILIO_AUTH_TOKEN")
	mustBind("twilio_from_number", "TWILIO_FROM_NUMBER")
	mustBind("emergency_contact", "EMERGENCY_CONTACT")
	mustBind("openai_api_key", "OPENAI_API_KEY")
	mustBind("ollama_host", "OLLAMA_BASE_URL")
	mustBind("medgemma_model", "MEDGEMMA_MODEL")
	mustBind("llava_model", "LLAVA_MODEL")
	mustBind("otlp_endpoint", "OTLP_ENDPOINT")
}

// Validate performs fail-fast configuration validation.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	switch c.Provider {
	case ProviderGemini, ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (expected %q, %q or %q)",
			ErrInvalidProvider, c.Provider, ProviderOllama, ProviderGemini, ProviderOpenAI)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name is empty", ErrInvalidModelName)
	}
	if c.MedGemmaModel == "" {
		return fmt.Errorf("%w: medgemma_model is empty", ErrInvalidModelName)
	}
	if c.LLaVAModel == "" {
		return fmt.Errorf("%w: llava_model is empty", ErrInvalidModelName)
	}
	if c.OllamaHost == "" {
		return ErrInvalidOllamaHost
	}

	if c.AgentTimeout < time.Second || c.AgentTimeout > 10*time.Minute {
		return fmt.Errorf("%w: %s (expected 1s..10m)", ErrInvalidTimeout, c.AgentTimeout)
	}
	if c.MaxTurns < 1 || c.MaxTurns > 50 {
		return fmt.Errorf("%w: %d (expected 1..50)", ErrInvalidMaxTurns, c.MaxTurns)
	}
	if c.MaxWorkers < 1 || c.MaxWorkers > 1024 {
		return fmt.Errorf("%w: %d (expected 1..1024)", ErrInvalidMaxWorkers, c.MaxWorkers)
	}

	return nil
}

// TelephonyConfigured reports whether all four Twilio settings are present.
func (c *Config) TelephonyConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioFromNumber != "" && c.EmergencyContact != ""
}
