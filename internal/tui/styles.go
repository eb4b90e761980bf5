package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary = lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#9D8CFF"}
	accent  = lipgloss.AdaptiveColor{Light: "#0A7A5A", Dark: "#4FD6A5"}
	muted   = lipgloss.AdaptiveColor{Light: "#777777", Dark: "#8A8A8A"}
	danger  = lipgloss.AdaptiveColor{Light: "#B3261E", Dark: "#FF6B6B"}
)

type styles struct {
	title     lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	muted     lipgloss.Style
	err       lipgloss.Style
	panel     lipgloss.Style
	done      lipgloss.Style
	current   lipgloss.Style
	input     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(primary),
		user:      lipgloss.NewStyle().Bold(true).Foreground(primary),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:     lipgloss.NewStyle().Foreground(muted),
		err:       lipgloss.NewStyle().Foreground(danger),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		done:    lipgloss.NewStyle().Foreground(accent),
		current: lipgloss.NewStyle().Bold(true).Foreground(primary),
		input: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(primary),
	}
}
