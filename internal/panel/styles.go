package panel

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")) // yellow
	onStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")) // green
	offStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")) // gray
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	frameStyle  = lipgloss.NewStyle().Padding(0, 1)
)
