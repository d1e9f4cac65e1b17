package tui

import (
	"encoding/base64"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Slash commands.
const (
	cmdHelp      = "/help"
	cmdClear     = "/clear"
	cmdExit      = "/exit"
	cmdQuit      = "/quit"
	cmdAttach    = "/attach"
	cmdVoice     = "/voice"
	cmdEmergency = "/emergency"
)

// keyMap holds key bindings for the help bar.
type keyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	History    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewLine:    key.NewBinding(key.WithKeys("shift+enter"), key.WithHelp("s+enter", "newline")),
		History:    key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "history")),
		Cancel:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "clear")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 {
		switch k.Code {
		case 'c':
			return m.handleCtrlC()
		case 'd':
			return m, m.cleanup()
		}
	}

	switch k.Code {
	case tea.KeyEnter:
		if m.state == StateInput && k.Mod&tea.ModShift == 0 {
			return m.handleSubmit()
		}

	case tea.KeyUp:
		if m.state == StateInput && m.input.Line() == 0 {
			return m.navigateHistory(-1)
		}

	case tea.KeyDown:
		if m.state == StateInput && m.input.Line() == m.input.LineCount()-1 {
			return m.navigateHistory(1)
		}

	case tea.KeyPgUp:
		m.viewport.PageUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.PageDown()
		return m, nil
	}

	// Always allow typing, even while a reply is pending.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleCtrlC() (tea.Model, tea.Cmd) {
	now := time.Now()

	// Double Ctrl+C within 1 second quits.
	if now.Sub(m.lastCtrlC) < time.Second {
		return m, m.cleanup()
	}
	m.lastCtrlC = now

	m.input.Reset()
	return m, nil
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}

	if strings.HasPrefix(query, "/") {
		return m.handleSlashCommand(query)
	}

	m.input.Reset()
	return m, m.submitMessage(query)
}

// submitMessage runs the shared submission path for typed text and voice
// transcripts: record history, consume the pending image, ask the gateway.
func (m *Model) submitMessage(text string) tea.Cmd {
	m.history = append(m.history, text)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.historyIdx = len(m.history)

	userMsg := Message{Role: roleUser, Text: text}
	if m.pendingImagePath != "" {
		userMsg.Text += "  [image: " + m.pendingImagePath + "]"
	}
	m.addMessage(userMsg)

	imageData := m.pendingImageData
	m.pendingImagePath = ""
	m.pendingImageData = ""

	m.state = StateThinking
	m.rebuildViewportContent()
	m.viewport.GotoBottom()

	return tea.Batch(m.spinner.Tick, m.sendChat(text, imageData))
}

func (m *Model) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case cmdHelp:
		m.addMessage(Message{
			Role: roleSystem,
			Text: "Commands:\n" +
				"  /attach <path>  attach an image to the next message\n" +
				"  /voice <path>   transcribe a recorded audio file and send it\n" +
				"  /emergency      place an emergency call now\n" +
				"  /clear          clear the transcript\n" +
				"  /quit           exit\n" +
				"Shortcuts: Enter send, Shift+Enter newline, Ctrl+C clear, Ctrl+D exit, PgUp/PgDn scroll",
		})

	case cmdClear:
		m.messages = nil

	case cmdExit, cmdQuit:
		return m, m.cleanup()

	case cmdAttach:
		m.attachImage(arg)

	case cmdVoice:
		if arg == "" {
			m.addMessage(Message{Role: roleError, Text: "Usage: /voice <path-to-audio-file>"})
			break
		}
		m.input.Reset()
		m.state = StateThinking
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.transcribeFile(arg))

	case cmdEmergency:
		m.input.Reset()
		m.state = StateThinking
		m.addMessage(Message{Role: roleSystem, Text: "Placing emergency call..."})
		m.rebuildViewportContent()
		return m, tea.Batch(m.spinner.Tick, m.placeEmergencyCall())

	default:
		m.addMessage(Message{Role: roleError, Text: "Unknown command: " + cmd})
	}

	m.input.Reset()
	m.rebuildViewportContent()
	return m, nil
}

// attachImage stages one image for the next message, replacing any
// previously attached one.
func (m *Model) attachImage(path string) {
	if path == "" {
		m.addMessage(Message{Role: roleError, Text: "Usage: /attach <path-to-image>"})
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		m.addMessage(Message{Role: roleError, Text: "Cannot read image: " + err.Error()})
		return
	}

	m.pendingImagePath = path
	m.pendingImageData = base64.StdEncoding.EncodeToString(data)
	m.addMessage(Message{Role: roleSystem, Text: "Image attached: " + path + " (sent with your next message)"})
}

func (m *Model) navigateHistory(delta int) (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		return m, nil
	}

	m.historyIdx += delta
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
	if m.historyIdx > len(m.history) {
		m.historyIdx = len(m.history)
	}

	if m.historyIdx == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[m.historyIdx])
		m.input.CursorEnd()
	}

	return m, nil
}

// cleanup cancels outstanding gateway calls and quits.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}
