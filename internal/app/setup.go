package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/opencare/medagent/internal/agent"
	"github.com/opencare/medagent/internal/config"
	"github.com/opencare/medagent/internal/emergency"
	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/medmodel"
	"github.com/opencare/medagent/internal/observability"
	"github.com/opencare/medagent/internal/speech"
	"github.com/opencare/medagent/internal/staging"
	"github.com/opencare/medagent/internal/telephony"
	"github.com/opencare/medagent/internal/tools"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing must be wired before Genkit initialization so the span
	// processor is registered on the provider Genkit uses.
	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	medClient, err := medmodel.New(cfg.OllamaHost, cfg.MedGemmaModel, cfg.LLaVAModel, logger)
	if err != nil {
		return nil, fmt.Errorf("creating medical model client: %w", err)
	}

	a.Caller = telephony.NewCaller(telephony.Config{
		AccountSID:       cfg.TwilioAccountSID,
		AuthToken:        cfg.TwilioAuthToken,
		FromNumber:       cfg.TwilioFromNumber,
		EmergencyContact: cfg.EmergencyContact,
	}, logger)

	a.Images, err = staging.NewStore(logger)
	if err != nil {
		return nil, fmt.Errorf("creating image staging store: %w", err)
	}

	handler := tools.NewHandler(medClient, a.Caller, a.Images, logger)
	if err := tools.RegisterTools(g, handler); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	runner, err := agent.NewGenkitRunner(g, fullModelName(cfg), cfg.MaxTurns, logger)
	if err != nil {
		return nil, fmt.Errorf("creating agent runner: %w", err)
	}

	a.Orchestrator = agent.NewOrchestrator(runner, a.Images,
		emergency.NewKeywordDetector(), cfg.AgentTimeout, cfg.MaxWorkers, logger)

	if cfg.OpenAIAPIKey != "" {
		a.Speech = speech.New(cfg.OpenAIAPIKey, cfg.TTSVoice, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, voice features disabled")
	}

	return a, nil
}

// provideOtelShutdown wires OTLP tracing and returns a teardown function.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	}, logger)
	if err != nil {
		logger.Warn("tracing setup failed", "error", err)
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideGenkit initializes Genkit with the configured agent provider.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery).
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		logger.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	case config.ProviderGemini:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.Provider)
	}

	return g, nil
}

// fullModelName prefixes the configured model with its provider namespace,
// the form genkit resolves model references by.
func fullModelName(cfg *config.Config) string {
	switch cfg.Provider {
	case config.ProviderGemini:
		return "googleai/" + cfg.ModelName
	case config.ProviderOpenAI:
		return "openai/" + cfg.ModelName
	default:
		return "ollama/" + cfg.ModelName
	}
}
