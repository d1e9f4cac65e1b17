// Package cmd contains the command-line entry points for medagent: the
// HTTP gateway (serve) and the terminal chat client (chat, the default).
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/opencare/medagent/internal/log"
)

// Execute is the main entry point for the medagent CLI.
//
// All application logic lives in the cmd package, leaving main.go as a
// minimal entry point. Command routing is plain os.Args inspection; the
// surface is small enough that a CLI framework would be overhead.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			return runServe()
		case "chat":
			return runChat()
		case "version", "--version", "-v":
			printVersion(os.Stdout)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		default:
			printHelp()
			return fmt.Errorf("unknown command: %s", os.Args[1])
		}
	}

	// Interactive chat is the default.
	return runChat()
}

// initLogger builds the process logger. DEBUG (any value) enables debug
// level; logs go to stderr so stdout stays clean for the TUI.
func initLogger() log.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	return log.New(cfg)
}

// printHelp displays the help message.
func printHelp() {
	fmt.Println("medagent - agentic medical consulting assistant")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  medagent                   Start the terminal chat client (default)")
	fmt.Println("  medagent chat [flags]      Start the terminal chat client")
	fmt.Println("  medagent serve [addr]      Start the HTTP gateway")
	fmt.Println("  medagent version           Show version information")
	fmt.Println("  medagent help              Show this help")
	fmt.Println()
	fmt.Println("Chat flags:")
	fmt.Println("  --gateway URL    Gateway base URL (default http://127.0.0.1:8080)")
	fmt.Println()
	fmt.Println("Serve flags:")
	fmt.Println("  --addr host:port Listen address (default from config, 127.0.0.1:8080)")
	fmt.Println()
	fmt.Println("Chat commands:")
	fmt.Println("  /attach <path>   Attach an image to the next message")
	fmt.Println("  /voice <path>    Transcribe a recorded audio file and send it")
	fmt.Println("  /emergency       Place an emergency call")
	fmt.Println("  /clear           Clear the transcript")
	fmt.Println("  /exit, /quit     Exit")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  OLLAMA_BASE_URL      Ollama host serving the medical models")
	fmt.Println("  GEMINI_API_KEY       Required for the gemini provider")
	fmt.Println("  OPENAI_API_KEY       Enables voice transcription and TTS")
	fmt.Println("  TWILIO_ACCOUNT_SID   Twilio credentials for emergency calls")
	fmt.Println("  TWILIO_AUTH_TOKEN")
	fmt.Println("  TWILIO_FROM_NUMBER")
	fmt.Println("  EMERGENCY_CONTACT    Number dialed for emergency calls")
	fmt.Println("  OTLP_ENDPOINT        Optional OTLP trace collector endpoint")
	fmt.Println("  DEBUG                Enable debug logging")
}
