// Package theme holds the Catppuccin Mocha palette used by the dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Red      = lipgloss.Color("#f38ba8")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	Warn  = lipgloss.NewStyle().Foreground(Yellow)
	Fail  = lipgloss.NewStyle().Foreground(Red).Bold(true)

	InProgress = lipgloss.NewStyle().Foreground(Peach)
	Completed  = lipgloss.NewStyle().Foreground(Green)
)

// Status renders a batch status label in its color.
func Status(status string) string {
	if status == "completed" {
		return Completed.Render(status)
	}
	return InProgress.Render(status)
}
