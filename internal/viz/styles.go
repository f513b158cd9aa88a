package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 42

// styles are the sidebar styles derived from a theme.
type styles struct {
	canvas    lipgloss.Style
	sidebar   lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	active    lipgloss.Style
	graph     lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	notice    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2),
		sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Border).
			Padding(1, 2).
			Width(sidebarWidth),
		header:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		active:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		graph:     lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0),
		running:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		paused:    lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		recording: lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		notice:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}

func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value) + "\n"
}

// paramBar draws val relative to twice its initial value.
func paramBar(val, initial float64, width int) string {
	ratio := 0.5
	if initial != 0 {
		ratio = val / (2 * initial)
	}
	if ratio > 1 {
		ratio = 1
	} else if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func formatParam(name string, val, initial float64) string {
	return fmt.Sprintf("%-11s %s %.4g", name, paramBar(val, initial, 10), val)
}
