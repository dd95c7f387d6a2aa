package overlay

import "github.com/charmbracelet/lipgloss"

// Styles collects the lipgloss styles for the overlay surfaces.
type Styles struct {
	App      lipgloss.Style
	Title    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Hint     lipgloss.Style
	Notice   lipgloss.Style
}

// DefaultStyles returns the standard overlay look.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		Item: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		Hint: lipgloss.NewStyle().
			Faint(true),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
	}
}
