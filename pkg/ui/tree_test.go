package ui

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

func newTestTreeModel(t *testing.T) TreeModel {
	t.Helper()
	tm := NewTreeModel(TestTheme())
	tm.SetSize(100, 30)
	tm.SetTree(testTree(t))
	return tm
}

func TestTreeStartsWithVictimsVisible(t *testing.T) {
	tm := newTestTreeModel(t)
	if got := tm.Len(); got != 3 {
		t.Fatalf("expected root and two victims, got %d rows", got)
	}
	if n := tm.SelectedNode(); n != tm.Tree().Root {
		t.Errorf("cursor should start on the root, got %q", n.ID())
	}
}

func TestToggleSelectedExpandsAndCollapses(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.MoveDown() // V100
	if !tm.ToggleSelected() {
		t.Fatal("expected V100 to expand")
	}
	if got := tm.Len(); got != 4 {
		t.Fatalf("expected 4 rows after expanding V100, got %d", got)
	}
	if tm.SelectedNode().ID() != "V100" {
		t.Errorf("cursor should stay on V100, got %q", tm.SelectedNode().ID())
	}
	tm.ToggleSelected()
	if got := tm.Len(); got != 3 {
		t.Errorf("expected 3 rows after collapsing, got %d", got)
	}
}

func TestLeafToggleIsNoop(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.JumpToBottom() // V101
	if tm.ToggleSelected() {
		t.Error("leaf must not toggle")
	}
}

func TestBurstNodeLocksWhenShown(t *testing.T) {
	tm := newTestTreeModel(t)
	if _, ok := tm.Reveal("B400"); !ok {
		t.Fatal("B400 should be reachable")
	}

	i := rowIndex(&tm, "B400")
	if i < 0 {
		t.Fatal("B400 should be visible")
	}
	b := tm.NodeAt(i)
	if !b.Burst || b.BurstCount != 3 {
		t.Fatalf("B400 should be burst with 3 children, got burst=%v count=%d", b.Burst, b.BurstCount)
	}
	before := tm.Len()
	if tm.Toggle(b) {
		t.Error("burst node must not expand")
	}
	if tm.Len() != before {
		t.Error("row count changed after toggling a burst node")
	}
	if meta := nodeMeta(b); !strings.Contains(meta, "3 hidden") {
		t.Errorf("meta %q should mention hidden children", meta)
	}
}

func TestRevealExpandsPathAndHighlights(t *testing.T) {
	tm := newTestTreeModel(t)
	n, ok := tm.Reveal("  H300 ")
	if !ok || n == nil {
		t.Fatal("expected H300 to be revealed")
	}
	if tm.SelectedNode() != n {
		t.Error("cursor should be on the revealed node")
	}
	if tm.Found() != n {
		t.Error("revealed node should be highlighted")
	}
	for _, p := range tm.Tree().PathTo(n)[:3] {
		if !p.Expanded {
			t.Errorf("ancestor %q should be expanded", p.ID())
		}
	}
}

func TestRevealUnknownAccount(t *testing.T) {
	tm := newTestTreeModel(t)
	if n, ok := tm.Reveal("NOPE"); n != nil || ok {
		t.Errorf("expected no match, got %v %v", n, ok)
	}
}

func TestRevealBehindBurstStopsAtBurstNode(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.ToggleExpandAll() // locks B400
	n, ok := tm.Reveal("C2")
	if ok {
		t.Fatal("C2 is hidden by a burst lock")
	}
	// burst dropped the children, so C2 is no longer in the tree
	if n != nil {
		t.Errorf("expected nil node for a pruned account, got %q", n.ID())
	}
}

func TestBuildTreePrefix(t *testing.T) {
	tests := []struct {
		row  trail.Row
		want string
	}{
		{trail.Row{Depth: 0}, ""},
		{trail.Row{Depth: 1, IsLast: false}, "├── "},
		{trail.Row{Depth: 2, IsLast: true, Trail: []bool{false}}, "│   └── "},
		{trail.Row{Depth: 3, IsLast: false, Trail: []bool{true, false}}, "    │   ├── "},
	}
	for _, tt := range tests {
		if got := buildTreePrefix(tt.row); got != tt.want {
			t.Errorf("buildTreePrefix(%+v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestIconAtMatchesLayout(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.Reveal("H300")
	i := rowIndex(&tm, "H300")
	if i < 0 {
		t.Fatal("H300 should be visible")
	}
	l := tm.layoutRow(tm.rows[i])
	if len(l.Icons) != 2 {
		t.Fatalf("expected ATM and hold icons, got %d", len(l.Icons))
	}

	plain := l.Prefix + l.Indicator + " " + l.Label
	if l.Meta != "" {
		plain += "  " + l.Meta
	}
	if got := cellWidth(plain) + 1; got != l.Icons[0].Start {
		t.Errorf("first icon starts at %d, want %d", l.Icons[0].Start, got)
	}

	for _, span := range l.Icons {
		icon, ok := tm.IconAt(i, span.Start)
		if !ok || icon != span.Icon {
			t.Errorf("IconAt(%d) = %v %v, want %v", span.Start, icon, ok, span.Icon)
		}
	}
	if _, ok := tm.IconAt(i, 0); ok {
		t.Error("prefix column must not hit an icon")
	}
}

func TestRowAtSkipsHeader(t *testing.T) {
	tm := newTestTreeModel(t)
	if got := tm.RowAt(0); got != -1 {
		t.Errorf("header line should map to -1, got %d", got)
	}
	if got := tm.RowAt(1); got != 0 {
		t.Errorf("first row should map to 0, got %d", got)
	}
	if got := tm.RowAt(50); got != -1 {
		t.Errorf("past the end should map to -1, got %d", got)
	}
}

func TestViewShowsPositionIndicatorWhenScrolling(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.SetSize(80, 4)
	tm.ToggleExpandAll()
	view := tm.View()
	if !strings.Contains(view, "Page 1/") {
		t.Errorf("expected a page indicator, got:\n%s", view)
	}
	tm.JumpToBottom()
	if tm.SelectedNode().ID() != "V101" {
		t.Errorf("last row should be V101, got %q", tm.SelectedNode().ID())
	}
	if !strings.Contains(tm.View(), "V101") {
		t.Error("viewport should follow the cursor")
	}
}

func TestViewRendersVictimLabelsAndAmounts(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.Reveal("M200")
	view := tm.View()
	for _, want := range []string{"Victim 1: V100", "Victim 2: V101", "M200", "₹4,000", "L1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestEmptyStateShowsMessage(t *testing.T) {
	tm := NewTreeModel(TestTheme())
	tm.SetMessage("No valid graph data found for this Acknowledgement No.")
	if !strings.Contains(tm.View(), "No valid graph data") {
		t.Error("expected the load message in the empty view")
	}
	if tm.SelectedNode() != nil {
		t.Error("no node should be selected without a tree")
	}
}

func TestJumpToParent(t *testing.T) {
	tm := newTestTreeModel(t)
	tm.Reveal("H300")
	tm.JumpToParent()
	if got := tm.SelectedNode().ID(); got != "M200" {
		t.Errorf("expected M200, got %q", got)
	}
}
