// Package tui provides the Bubble Tea terminal chat client for the
// medical assistant gateway.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/opencare/medagent/internal/api"
)

// Gateway is the slice of the gateway client the TUI needs.
type Gateway interface {
	Chat(ctx context.Context, message, imageData string) (*api.ChatResponse, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
	EmergencyCall(ctx context.Context, message string) (string, error)
}

// State represents the TUI state machine.
type State int

// TUI state machine states.
const (
	StateInput    State = iota // Awaiting user input
	StateThinking              // Waiting on the gateway
)

// Memory bounds to prevent unbounded growth.
const (
	maxMessages = 200
	maxHistory  = 100
)

// Message roles for display.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
	roleError     = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	helpLines      = 1
	promptLines    = 1
	minViewport    = 3
)

// Message is one transcript entry.
type Message struct {
	Role      string
	Text      string
	Source    string // envelope source for assistant messages
	Emergency bool   // emergency-flagged assistant messages are marked
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	// Input
	input      textarea.Model
	history    []string
	historyIdx int

	// State
	state     State
	lastCtrlC time.Time

	// Session state: at most one pending image and one saved audio clip.
	pendingImagePath string
	pendingImageData string // base64
	lastAudioPath    string

	// Output
	spinner  spinner.Model
	viewBuf  strings.Builder
	messages []Message

	viewport viewport.Model
	help     help.Model
	keys     keyMap

	// Dependencies
	gateway   Gateway
	ctx       context.Context
	ctxCancel context.CancelFunc

	// Dimensions
	width  int
	height int

	styles Styles
}

// addMessage appends a message and enforces the maxMessages bound.
func (m *Model) addMessage(msg Message) {
	m.messages = append(m.messages, msg)
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
}

// New creates a Model talking to the given gateway.
//
// ctx must be the same context passed to tea.WithContext() so cancellation
// behaves consistently.
func New(ctx context.Context, gateway Gateway) (*Model, error) {
	if gateway == nil {
		return nil, errors.New("tui.New: gateway is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	ctx, cancel := context.WithCancel(ctx)

	// Enter submits, Shift+Enter adds a newline.
	ta := textarea.New()
	ta.Placeholder = "Describe your symptoms or ask a medical question..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.MaxWidth = 0
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// Keys are routed explicitly in handleKey, so the viewport's own
	// bindings are disabled.
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{}

	return &Model{
		gateway:   gateway,
		ctx:       ctx,
		ctxCancel: cancel,
		input:     ta,
		spinner:   sp,
		viewport:  vp,
		help:      help.New(),
		keys:      newKeyMap(),
		styles:    DefaultStyles(),
		history:   make([]string, 0, maxHistory),
		width:     80,
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.input.Focus(),
	)
}
