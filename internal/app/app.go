// Package app provides application initialization and dependency wiring.
//
// Setup builds the full assistant: tracing, the Genkit agent provider, the
// medical model client, telephony, speech, the tool set, and the query
// orchestrator. Call Close() to release everything.
package app

import (
	"errors"

	"github.com/firebase/genkit/go/genkit"

	"github.com/opencare/medagent/internal/agent"
	"github.com/opencare/medagent/internal/config"
	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/speech"
	"github.com/opencare/medagent/internal/staging"
	"github.com/opencare/medagent/internal/telephony"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit       *genkit.Genkit
	Orchestrator *agent.Orchestrator
	Caller       *telephony.Caller
	Speech       *speech.Client // nil without an OpenAI API key
	Images       *staging.Store

	otelCleanup func()
}

// AgentName describes the agent stack for the root info endpoint.
func (a *App) AgentName() string {
	return "Genkit + " + a.Config.Provider
}

// Close gracefully releases all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	var errs []error
	if a.Images != nil {
		if err := a.Images.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return errors.Join(errs...)
}
