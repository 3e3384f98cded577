package tui

import (
	"github.com/charmbracelet/lipgloss"

	"mytasks/internal/theme"
)

type palette struct {
	text   lipgloss.Color
	muted  lipgloss.Color
	accent lipgloss.Color
	border lipgloss.Color
	danger lipgloss.Color
}

var (
	lightPalette = palette{
		text:   lipgloss.Color("#1A1B1E"),
		muted:  lipgloss.Color("#868E96"),
		accent: lipgloss.Color("#228BE6"),
		border: lipgloss.Color("#CED4DA"),
		danger: lipgloss.Color("#E03131"),
	}
	darkPalette = palette{
		text:   lipgloss.Color("#C1C2C5"),
		muted:  lipgloss.Color("#909296"),
		accent: lipgloss.Color("#4DABF7"),
		border: lipgloss.Color("#373A40"),
		danger: lipgloss.Color("#FF6B6B"),
	}
)

type styles struct {
	header       lipgloss.Style
	card         lipgloss.Style
	selectedCard lipgloss.Style
	cardTitle    lipgloss.Style
	summary      lipgloss.Style
	muted        lipgloss.Style
	status       lipgloss.Style
	errStatus    lipgloss.Style
	dialog       lipgloss.Style
	label        lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	p := lightPalette
	if t == theme.Dark {
		p = darkPalette
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1).
		MarginBottom(1)

	return styles{
		header:       lipgloss.NewStyle().Bold(true).Foreground(p.accent).MarginBottom(1),
		card:         card,
		selectedCard: card.BorderForeground(p.accent),
		cardTitle:    lipgloss.NewStyle().Bold(true).Foreground(p.text),
		summary:      lipgloss.NewStyle().Foreground(p.text),
		muted:        lipgloss.NewStyle().Foreground(p.muted),
		status:       lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		errStatus:    lipgloss.NewStyle().Foreground(p.danger),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		label: lipgloss.NewStyle().Bold(true).Foreground(p.text),
	}
}
