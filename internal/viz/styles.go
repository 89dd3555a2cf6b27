package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from CurrentTheme on every render so a theme switch
// takes effect immediately.
type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	stats  lipgloss.Style
	canvas lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
}

func themed(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:  lipgloss.NewStyle().Foreground(t.Text),
		graph:  lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(48),
		canvas: lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 2),
		ok:     lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		warn:   lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		bad:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// ThrustBar renders one rotor command as a bar of width cells, full at max.
func ThrustBar(st styles, value, max float64, width int) string {
	frac := 0.0
	if max > 0 {
		frac = value / max
	}
	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	switch {
	case frac > 0.8:
		bar = st.bad.Render(bar)
	case frac > 0.4:
		bar = st.warn.Render(bar)
	default:
		bar = st.ok.Render(bar)
	}
	return fmt.Sprintf("%s %5.2f", bar, value)
}

func Separator(width int) string {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(strings.Repeat("─", width))
}
