package prompt

import "github.com/charmbracelet/lipgloss"

var (
	Primary = lipgloss.Color("#25D366") // WhatsApp green
	Muted   = lipgloss.Color("#6B7280")
	Error   = lipgloss.Color("#EF4444")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Step = lipgloss.NewStyle().
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(Muted)

	Success = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Failure = lipgloss.NewStyle().
		Bold(true).
		Foreground(Error)
)
