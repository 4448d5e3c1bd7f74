// Package styles holds the lipgloss styles used for human-readable CLI output.
// Colors are dropped automatically when the output is not a terminal.
package styles

import "github.com/charmbracelet/lipgloss"

// Tokyo Night palette.
var (
	colorPrimary = lipgloss.Color("#7aa2f7")
	colorMuted   = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
)

var (
	TextPrimaryBoldStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	TextBoldStyle        = lipgloss.NewStyle().Bold(true)
	TextMutedStyle       = lipgloss.NewStyle().Foreground(colorMuted)
	TextSuccessStyle     = lipgloss.NewStyle().Foreground(colorSuccess)
	TextWarningStyle     = lipgloss.NewStyle().Foreground(colorWarning)
	TextErrorStyle       = lipgloss.NewStyle().Foreground(colorError)
)

// Status icons.
const (
	IconPass = "✔"
	IconWarn = "●"
	IconFail = "✘"
)
