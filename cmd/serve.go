package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/opencare/medagent/internal/api"
	"github.com/opencare/medagent/internal/app"
	"github.com/opencare/medagent/internal/config"
)

// runServe initializes the application and starts the HTTP gateway.
func runServe() error {
	logger := initLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr, err := parseServeAddr(cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("parsing address: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting medical assistant gateway", "version", Version)

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	serverCfg := api.ServerConfig{
		Queries:     a.Orchestrator,
		Caller:      a.Caller,
		AgentName:   a.AgentName(),
		Version:     Version,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}
	// A nil *speech.Client must stay a nil interface so the speech routes
	// are skipped.
	if a.Speech != nil {
		serverCfg.Transcriber = a.Speech
		serverCfg.Synthesizer = a.Speech
	}

	srv, err := api.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating gateway server: %w", err)
	}

	return srv.Run(ctx, addr)
}
