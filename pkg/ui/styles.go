package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// panel renders content in a rounded box of the given outer size using the
// theme's renderer.
func (t Theme) panel(content string, width, height int, focused bool) string {
	border := t.Border
	if focused {
		border = t.Primary
	}
	style := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		style = style.Width(width - 2)
	}
	if height > 2 {
		style = style.Height(height - 2)
	}
	return style.Render(content)
}

// keyHint renders "key action" pairs for footers.
func (t Theme) keyHint(key, action string) string {
	k := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Render(key)
	return k + " " + t.MutedText.Render(action)
}
