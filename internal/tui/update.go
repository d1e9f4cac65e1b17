package tui

import (
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		inputHeight := m.input.Height() + promptLines
		fixedHeight := separatorLines + inputHeight + helpLines
		vpHeight := max(msg.Height-fixedHeight, minViewport)

		m.viewport.SetWidth(msg.Width)
		m.viewport.SetHeight(vpHeight)
		m.input.SetWidth(msg.Width - 4)
		m.help.SetWidth(msg.Width)

		m.rebuildViewportContent()
		return m, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == StateThinking {
			m.rebuildViewportContent()
		}
		return m, cmd

	case chatDoneMsg:
		m.state = StateInput
		m.addMessage(Message{
			Role:      roleAssistant,
			Text:      msg.resp.Response,
			Source:    msg.resp.Source,
			Emergency: msg.resp.HasEmergency,
		})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		// Voice the reply in the background.
		return m, tea.Batch(m.input.Focus(), m.fetchSpeech(msg.resp.Response))

	case chatErrMsg:
		m.state = StateInput
		m.addMessage(Message{Role: roleError, Text: msg.err.Error()})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()

	case transcriptMsg:
		// A transcribed recording flows through the normal submission path.
		m.state = StateInput
		m.addMessage(Message{Role: roleSystem, Text: "Transcribed: " + msg.text})
		m.rebuildViewportContent()
		return m, m.submitMessage(msg.text)

	case audioSavedMsg:
		m.lastAudioPath = msg.path
		m.addMessage(Message{Role: roleSystem, Text: "Audio reply saved: " + msg.path})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, nil

	case audioSkippedMsg:
		return m, nil

	case emergencyDoneMsg:
		m.state = StateInput
		m.addMessage(Message{Role: roleSystem, Text: msg.report})
		m.rebuildViewportContent()
		m.viewport.GotoBottom()
		return m, m.input.Focus()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
