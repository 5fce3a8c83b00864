package tui

import "github.com/charmbracelet/lipgloss"

// Row statuses.
const (
	StatusPending   = "pending"
	StatusImporting = "importing"
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusMissing   = "missing"
)

var (
	// HeaderStyle styles the column header row.
	HeaderStyle = lipgloss.NewStyle().Bold(true)

	statusStyles = map[string]lipgloss.Style{
		StatusOK:        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		StatusImporting: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		StatusMissing:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		StatusPending:   lipgloss.NewStyle().Faint(true),
	}
)

// StatusStyle returns the lipgloss style for the given status string.
func StatusStyle(status string) lipgloss.Style {
	if s, ok := statusStyles[status]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
