// Package api provides the HTTP gateway for the medical assistant.
//
// Endpoints:
//
//	POST /chat            - medical query through the agent
//	POST /voice           - audio transcription (multipart upload)
//	POST /tts             - text to speech (audio/mpeg attachment)
//	POST /emergency-call  - direct outbound emergency call
//	GET  /                - service info / liveness
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (recovery, request ID, logging, CORS)
//   - chat.go: chat endpoint and image context extraction
//   - voice.go, tts.go: speech endpoints
//   - emergency.go: direct emergency call endpoint
//   - info.go: root info endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/opencare/medagent/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout prevents Slowloris-style header dribbling.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout covers the whole request body. Voice uploads can be
	// several megabytes, so this is generous.
	ReadTimeout = 60 * time.Second

	// WriteTimeout must exceed the agent deadline so timeout envelopes
	// still reach the client.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// ServerConfig contains everything the gateway needs.
type ServerConfig struct {
	Queries     QueryRunner // Required
	Transcriber Transcriber // Optional: nil disables POST /voice
	Synthesizer Synthesizer // Optional: nil disables POST /tts
	Caller      CallReporter
	AgentName   string
	Version     string
	CORSOrigins []string
	Logger      log.Logger
}

// Server is the HTTP gateway server.
type Server struct {
	mux    *http.ServeMux
	cors   []string
	logger log.Logger
}

// NewServer creates a gateway server with all routes registered.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Queries == nil {
		return nil, errors.New("query runner is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()

	NewChatHandler(cfg.Queries, logger).RegisterRoutes(mux)
	NewVoiceHandler(cfg.Transcriber, logger).RegisterRoutes(mux)
	NewTTSHandler(cfg.Synthesizer, logger).RegisterRoutes(mux)
	NewEmergencyHandler(cfg.Caller, logger).RegisterRoutes(mux)
	NewInfoHandler(cfg.Version, cfg.AgentName).RegisterRoutes(mux)

	return &Server{mux: mux, cors: cfg.CORSOrigins, logger: logger}, nil
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → request ID → logging → CORS → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware(),
		loggingMiddleware(s.logger),
		corsMiddleware(s.cors),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
