package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/opencare/medagent/internal/client"
	"github.com/opencare/medagent/internal/tui"
)

// defaultGatewayURL matches the gateway's default listen address.
const defaultGatewayURL = "http://127.0.0.1:8080"

// runChat starts the terminal chat client against a running gateway.
func runChat() error {
	logger := initLogger()

	gatewayURL, err := parseChatFlags()
	if err != nil {
		return fmt.Errorf("parsing chat flags: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := client.New(gatewayURL, logger)

	// Fail fast with a useful message when the gateway is unreachable.
	info, err := c.Info(ctx)
	if err != nil {
		return fmt.Errorf("gateway not reachable at %s (start it with `medagent serve`): %w", gatewayURL, err)
	}
	logger.Debug("connected to gateway", "agent", info.Agent, "version", info.Version)

	model, err := tui.New(ctx, c)
	if err != nil {
		return fmt.Errorf("initializing chat client: %w", err)
	}

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running chat client: %w", err)
	}
	return nil
}

// parseChatFlags reads the gateway URL from the command line, supporting
// both `medagent chat --gateway URL` and a bare `medagent --gateway URL`.
func parseChatFlags() (string, error) {
	chatFlags := flag.NewFlagSet("chat", flag.ContinueOnError)
	chatFlags.SetOutput(os.Stderr)

	gateway := chatFlags.String("gateway", defaultGatewayURL, "Gateway base URL")

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "chat" {
		args = args[1:]
	}
	if err := chatFlags.Parse(args); err != nil {
		return "", err
	}

	url := strings.TrimSpace(*gateway)
	if url == "" {
		return "", fmt.Errorf("gateway URL is empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return url, nil
}
