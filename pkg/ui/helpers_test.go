package ui

import (
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"AC000123", 20, "AC000123"},
		{"AC000123", 8, "AC000123"},
		{"AC000123", 5, "AC00…"},
		{"₹1,20,000", 4, "₹1,…"},
		{"日本語の口座", 5, "日本…"},
		{"anything", 1, "…"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.width)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if w := cellWidth(got); w > tt.width && tt.width > 0 {
			t.Errorf("truncate(%q, %d) is %d cells wide", tt.in, tt.width, w)
		}
	}
}

func TestFitPadsToWidth(t *testing.T) {
	if got := fit("HDFC", 6); got != "HDFC  " {
		t.Errorf("fit = %q", got)
	}
	if got := padLeft("₹5", 4); got != "  ₹5" {
		t.Errorf("padLeft = %q", got)
	}
}

func TestLayerColorFallsBackToANSI(t *testing.T) {
	th := TestTheme()

	th.Profile = colorprofile.TrueColor
	if _, ok := th.LayerColor(1).(lipgloss.AdaptiveColor); !ok {
		t.Errorf("true color terminals should get the adaptive palette, got %T", th.LayerColor(1))
	}
	if th.LayerColor(1) != th.LayerColor(1+len(layerPalette)) {
		t.Error("layer colors should cycle")
	}

	th.Profile = colorprofile.ANSI
	if got, ok := th.LayerColor(2).(lipgloss.ANSIColor); !ok || got != ansiLayers[1] {
		t.Errorf("16-color terminals should get ANSI layer colors, got %v", th.LayerColor(2))
	}
	if th.LayerColor(0) != th.Victim || th.LayerColor(-1) != th.Root {
		t.Error("victim and root keep their role colors")
	}
}
