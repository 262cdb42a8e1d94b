package shell

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette follows the CharmTone colors used across our terminal tools.
var (
	colorPrimary = lipgloss.Color("#6B50FF")
	colorMuted   = lipgloss.Color("#858392")
	colorText    = lipgloss.Color("#DFDBDD")
	colorSuccess = lipgloss.Color("#00FFB2")
	colorWarning = lipgloss.Color("#FFD300")
	colorError   = lipgloss.Color("#E94090")
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	active  lipgloss.Style
}

// newStyles binds every style to a renderer for out, so colors are dropped
// when out is not a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Foreground(colorPrimary).Bold(true),
		header:  r.NewStyle().Foreground(colorPrimary).Bold(true),
		label:   r.NewStyle().Foreground(colorMuted).Width(18),
		value:   r.NewStyle().Foreground(colorText),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		active:  r.NewStyle().Foreground(colorSuccess).Bold(true),
	}
}
