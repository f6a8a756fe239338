package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncate cuts s to maxWidth cells, ending in an ellipsis when anything
// was dropped. Widths count terminal cells, so ₹ and CJK names line up.
func truncate(s string, maxWidth int) string {
	const ellipsis = "…"
	switch {
	case maxWidth <= 0:
		return ""
	case runewidth.StringWidth(s) <= maxWidth:
		return s
	case maxWidth == 1:
		return ellipsis
	}
	return runewidth.Truncate(s, maxWidth-1, "") + ellipsis
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s in width cells.
func padLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// fit truncates then pads s to exactly width cells.
func fit(s string, width int) string {
	return padRight(truncate(s, width), width)
}

// cellWidth is the display width of s.
func cellWidth(s string) int {
	return runewidth.StringWidth(s)
}
