package tui

import (
	"fmt"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/opencare/medagent/internal/api"
)

// Messages delivered back into Update by commands.
type (
	chatDoneMsg struct {
		resp *api.ChatResponse
	}
	chatErrMsg struct {
		err error
	}
	transcriptMsg struct {
		text string
	}
	audioSavedMsg struct {
		path string
	}
	audioSkippedMsg struct{}
	emergencyDoneMsg struct {
		report string
	}
)

// sendChat sends one message, with the pending image when one is attached.
func (m *Model) sendChat(message, imageData string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.gateway.Chat(m.ctx, message, imageData)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return chatDoneMsg{resp: resp}
	}
}

// fetchSpeech synthesizes the reply and saves it to a temp MP3. Synthesis
// failures are not errors worth interrupting the chat for; the clip is
// simply skipped.
func (m *Model) fetchSpeech(text string) tea.Cmd {
	return func() tea.Msg {
		audio, err := m.gateway.Synthesize(m.ctx, text)
		if err != nil || len(audio) == 0 {
			return audioSkippedMsg{}
		}

		f, err := os.CreateTemp("", "medagent-reply-*.mp3")
		if err != nil {
			return audioSkippedMsg{}
		}
		if _, err := f.Write(audio); err != nil {
			f.Close()
			os.Remove(f.Name())
			return audioSkippedMsg{}
		}
		if err := f.Close(); err != nil {
			os.Remove(f.Name())
			return audioSkippedMsg{}
		}
		return audioSavedMsg{path: f.Name()}
	}
}

// transcribeFile uploads a recorded audio file and returns its transcript.
func (m *Model) transcribeFile(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return chatErrMsg{err: fmt.Errorf("opening audio file: %w", err)}
		}
		defer f.Close()

		text, err := m.gateway.Transcribe(m.ctx, filepath.Base(path), f)
		if err != nil {
			return chatErrMsg{err: err}
		}
		return transcriptMsg{text: text}
	}
}

// placeEmergencyCall triggers a direct emergency call.
func (m *Model) placeEmergencyCall() tea.Cmd {
	return func() tea.Msg {
		report, err := m.gateway.EmergencyCall(m.ctx, "")
		if err != nil {
			return chatErrMsg{err: err}
		}
		return emergencyDoneMsg{report: report}
	}
}
