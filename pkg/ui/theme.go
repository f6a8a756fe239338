package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// termProfile is the color depth of stdout, detected once.
var termProfile = colorprofile.Detect(os.Stdout, os.Environ())

// Theme holds the colors and pre-built styles of the trail viewer.
type Theme struct {
	Renderer *lipgloss.Renderer
	// Profile decides whether layers get the hex palette or plain ANSI.
	Profile colorprofile.Profile

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Trail roles
	Root   lipgloss.AdaptiveColor
	Victim lipgloss.AdaptiveColor
	Hold   lipgloss.AdaptiveColor
	Burst  lipgloss.AdaptiveColor
	Found  lipgloss.AdaptiveColor // search hit
	Amount lipgloss.AdaptiveColor

	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once instead of per frame.
	MutedText   lipgloss.Style
	TreeLines   lipgloss.Style
	VictimLabel lipgloss.Style
	AmountText  lipgloss.Style
	FoundRow    lipgloss.Style
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,
		Profile:  termProfile,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Root:   lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#6699FF"},
		Victim: lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Hold:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Burst:  lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Found:  lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"},
		Amount: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.TreeLines = r.NewStyle().Foreground(t.Muted)
	t.VictimLabel = r.NewStyle().Foreground(t.Victim).Bold(true)
	t.AmountText = r.NewStyle().Foreground(t.Amount)
	t.FoundRow = r.NewStyle().Foreground(t.Found).Bold(true).Underline(true)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.SuccessText = r.NewStyle().Foreground(t.Success)

	return t
}

// layerPalette colors account names by display layer, cycling past the end.
var layerPalette = []lipgloss.AdaptiveColor{
	{Light: "#2684FF", Dark: "#4C9AFF"},
	{Light: "#006080", Dark: "#8BE9FD"},
	{Light: "#6B47D9", Dark: "#BD93F9"},
	{Light: "#B06800", Dark: "#FFB86C"},
	{Light: "#008080", Dark: "#00CED1"},
	{Light: "#808000", Dark: "#F1FA8C"},
}

// ansiLayers is the palette for terminals below 256 colors.
var ansiLayers = []lipgloss.ANSIColor{4, 6, 5, 3, 2, 7}

// LayerColor returns the color for a display layer (1-based). The root and
// victim levels use their own role colors.
func (t Theme) LayerColor(displayLayer int) lipgloss.TerminalColor {
	switch {
	case displayLayer < 0:
		return t.Root
	case displayLayer == 0:
		return t.Victim
	case t.Profile < colorprofile.ANSI256:
		return ansiLayers[(displayLayer-1)%len(ansiLayers)]
	}
	return layerPalette[(displayLayer-1)%len(layerPalette)]
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
