package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Medical teal for branding.
const brandTeal = "#2AA198"

// Banner ASCII art.
var bannerArt = []string{
	" ███╗   ███╗███████╗██████╗  █████╗  ██████╗ ███████╗███╗   ██╗████████╗",
	" ████╗ ████║██╔════╝██╔══██╗██╔══██╗██╔════╝ ██╔════╝████╗  ██║╚══██╔══╝",
	" ██╔████╔██║█████╗  ██║  ██║███████║██║  ███╗█████╗  ██╔██╗ ██║   ██║   ",
	" ██║╚██╔╝██║██╔══╝  ██║  ██║██╔══██║██║   ██║██╔══╝  ██║╚██╗██║   ██║   ",
	" ██║ ╚═╝ ██║███████╗██████╔╝██║  ██║╚██████╔╝███████╗██║ ╚████║   ██║   ",
	" ╚═╝     ╚═╝╚══════╝╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝  ╚═══╝   ╚═╝   ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Emergency lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(brandTeal)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Emergency: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// RenderBanner returns the ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips is displayed under the banner.
var welcomeTips = []string{
	"Medical consulting assistant. Not a substitute for professional care.",
	"  • Describe symptoms naturally, or use /attach to add an image",
	"  • /voice <file> transcribes a recording, /emergency places a call",
	"  • Use /help for all commands, Ctrl+D to exit",
	"  • In a life-threatening emergency, call your local emergency number",
}

// RenderWelcomeTips returns the styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
