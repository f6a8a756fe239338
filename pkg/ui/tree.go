// tree.go - Collapsible fund-trail tree with burst-aware rows and an icon strip
package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

// TreeModel renders the visible rows of a trail.Tree and owns the cursor and
// viewport. Expansion state lives in the tree itself.
type TreeModel struct {
	theme Theme
	tree  *trail.Tree
	rows  []trail.Row

	cursor         int
	viewportOffset int
	width          int
	height         int

	found   *trail.Node // last search hit, highlighted until the next search
	message string      // shown instead of rows when there is no tree
}

// NewTreeModel creates an empty tree model
func NewTreeModel(theme Theme) TreeModel {
	return TreeModel{theme: theme}
}

// SetTree replaces the tree and resets the cursor to the root.
func (t *TreeModel) SetTree(tree *trail.Tree) {
	t.tree = tree
	t.message = ""
	t.found = nil
	t.cursor = 0
	t.viewportOffset = 0
	t.Refresh()
}

// Tree returns the tree being displayed, or nil.
func (t *TreeModel) Tree() *trail.Tree {
	return t.tree
}

// SetMessage clears the tree and shows msg in its place.
func (t *TreeModel) SetMessage(msg string) {
	t.tree = nil
	t.rows = nil
	t.found = nil
	t.cursor = 0
	t.viewportOffset = 0
	t.message = msg
}

func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Refresh re-flattens the tree after an expansion change. The cursor stays on
// the same node when it is still visible.
func (t *TreeModel) Refresh() {
	selected := t.SelectedNode()
	t.rows = t.tree.Visible()
	if selected != nil && t.Select(selected) {
		return
	}
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// Len returns the number of visible rows.
func (t *TreeModel) Len() int {
	return len(t.rows)
}

// SelectedNode returns the node under the cursor.
func (t *TreeModel) SelectedNode() *trail.Node {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor].Node
	}
	return nil
}

// Select moves the cursor to n if it is visible.
func (t *TreeModel) Select(n *trail.Node) bool {
	for i, row := range t.rows {
		if row.Node == n {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// SetFound highlights n as the current search hit.
func (t *TreeModel) SetFound(n *trail.Node) {
	t.found = n
}

// Found returns the highlighted search hit.
func (t *TreeModel) Found() *trail.Node {
	return t.found
}

// ToggleSelected flips the selected node. It returns false for leaves and
// burst-locked nodes.
func (t *TreeModel) ToggleSelected() bool {
	return t.Toggle(t.SelectedNode())
}

// Toggle flips n and refreshes the rows.
func (t *TreeModel) Toggle(n *trail.Node) bool {
	if t.tree == nil || n == nil {
		return false
	}
	ok := t.tree.Toggle(n)
	t.Refresh()
	return ok
}

// ToggleExpandAll applies the tree-wide expand/collapse and returns the new
// flag.
func (t *TreeModel) ToggleExpandAll() bool {
	if t.tree == nil {
		return false
	}
	on := t.tree.ToggleExpandAll()
	t.Refresh()
	return on
}

// Reveal expands the path to account and moves the cursor onto it.
func (t *TreeModel) Reveal(account string) (*trail.Node, bool) {
	if t.tree == nil {
		return nil, false
	}
	path, ok := t.tree.Reveal(account)
	t.Refresh()
	if len(path) == 0 {
		return nil, false
	}
	target := path[len(path)-1]
	if !ok {
		// stop at the burst node that hides the target
		for _, n := range path {
			if n.Burst {
				t.Select(n)
				return n, false
			}
		}
	}
	t.found = target
	t.Select(target)
	return target, ok
}

// MoveDown moves the cursor down in the flat list.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

// MoveUp moves the cursor up in the flat list.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

// JumpToTop moves the cursor to the root row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

// JumpToBottom moves cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
		t.ensureCursorVisible()
	}
}

// JumpToParent moves the cursor to the parent of the selected node.
func (t *TreeModel) JumpToParent() {
	n := t.SelectedNode()
	if n == nil || t.tree == nil {
		return
	}
	if p := t.tree.Parent(n); p != nil {
		t.Select(p)
	}
}

// PageForwardFull moves the cursor forward by a full page of rows.
func (t *TreeModel) PageForwardFull() {
	t.cursor += max(t.effectiveVisibleCount(), 1)
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// PageBackwardFull moves the cursor back by a full page of rows.
func (t *TreeModel) PageBackwardFull() {
	t.cursor -= max(t.effectiveVisibleCount(), 1)
	if t.cursor < 0 {
		t.cursor = 0
	}
	t.ensureCursorVisible()
}

// View renders the header row and the rows in the viewport.
func (t *TreeModel) View() string {
	if t.tree == nil || len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.RenderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		sb.WriteString(t.renderRow(t.rows[i], i == t.cursor))
		sb.WriteString("\n")
	}

	if len(t.rows) > t.effectiveVisibleCount() {
		sb.WriteString(t.renderPositionIndicator(start, end))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *TreeModel) renderEmptyState() string {
	r := t.theme.Renderer
	var sb strings.Builder
	sb.WriteString(r.NewStyle().Foreground(t.theme.Primary).Bold(true).Render("Fund Trail"))
	sb.WriteString("\n\n")
	msg := t.message
	if msg == "" {
		msg = "Loading graph..."
	}
	sb.WriteString(t.theme.MutedText.Render(msg))
	return sb.String()
}

// RenderHeader returns the column header row.
func (t *TreeModel) RenderHeader() string {
	label := "  ACCOUNT"
	if t.tree != nil && t.tree.ExpandAllActive() {
		label += "  (all expanded)"
	}
	return t.theme.Header.Width(t.rowWidth()).Render(label)
}

// renderPositionIndicator renders "Page X/Y (start-end of total)".
func (t *TreeModel) renderPositionIndicator(start, end int) string {
	page, pages := t.pageInfo(t.effectiveVisibleCount())
	indicator := fmt.Sprintf(" Page %d/%d (%d-%d of %d)", page, pages, start+1, end, len(t.rows))
	return t.theme.MutedText.Render(indicator)
}

func (t *TreeModel) pageInfo(pageSize int) (currentPage, totalPages int) {
	if pageSize <= 0 {
		pageSize = 1
	}
	totalPages = max((len(t.rows)+pageSize-1)/pageSize, 1)
	currentPage = min(t.viewportOffset/pageSize+1, totalPages)
	return currentPage, totalPages
}

func (t *TreeModel) rowWidth() int {
	if t.width <= 0 {
		return 80
	}
	return t.width
}

// iconSpan is the cell range an icon occupies on its row.
type iconSpan struct {
	Icon       trail.Icon
	Start, End int // [Start, End) in cells from the row's left edge
}

// rowLayout is the plain-text layout of one row. Rendering and mouse hit
// testing both use it so they cannot disagree.
type rowLayout struct {
	Prefix    string
	Indicator string
	Label     string
	Meta      string
	Icons     []iconSpan
}

func (t *TreeModel) layoutRow(row trail.Row) rowLayout {
	n := row.Node
	l := rowLayout{
		Prefix:    buildTreePrefix(row),
		Indicator: expandIndicator(n),
		Label:     nodeLabel(n),
		Meta:      nodeMeta(n),
	}

	icons := n.Icons()
	iconsWidth := 0
	for _, ic := range icons {
		iconsWidth += 1 + cellWidth(ic.Glyph())
	}

	// reduce by 1 to avoid wrapping on the terminal edge
	avail := t.rowWidth() - 1 - cellWidth(l.Prefix) - cellWidth(l.Indicator) - 1 - iconsWidth
	if avail < 1 {
		avail = 1
	}
	text := l.Label
	if l.Meta != "" {
		text += "  " + l.Meta
	}
	if cellWidth(text) > avail {
		if cellWidth(l.Label) >= avail {
			l.Label = truncate(l.Label, avail)
			l.Meta = ""
		} else {
			l.Meta = truncate(l.Meta, avail-cellWidth(l.Label)-2)
		}
	}

	col := cellWidth(l.Prefix) + cellWidth(l.Indicator) + 1 + cellWidth(l.Label)
	if l.Meta != "" {
		col += 2 + cellWidth(l.Meta)
	}
	for _, ic := range icons {
		col++ // separator
		w := cellWidth(ic.Glyph())
		l.Icons = append(l.Icons, iconSpan{Icon: ic, Start: col, End: col + w})
		col += w
	}
	return l
}

func (t *TreeModel) renderRow(row trail.Row, selected bool) string {
	l := t.layoutRow(row)
	n := row.Node
	th := t.theme

	var sb strings.Builder
	sb.WriteString(th.TreeLines.Render(l.Prefix))
	sb.WriteString(th.MutedText.Render(l.Indicator))
	sb.WriteString(" ")

	labelStyle := th.Renderer.NewStyle().Foreground(th.LayerColor(n.DisplayLayer()))
	switch {
	case n == t.found:
		labelStyle = th.FoundRow
	case row.Depth == 0:
		labelStyle = labelStyle.Foreground(th.Root).Bold(true)
	case row.Depth == 1:
		labelStyle = th.VictimLabel
	case n.Data.Hold != nil:
		labelStyle = labelStyle.Foreground(th.Hold)
	}
	sb.WriteString(labelStyle.Render(l.Label))
	if l.Meta != "" {
		sb.WriteString("  ")
		sb.WriteString(th.MutedText.Render(l.Meta))
	}
	for _, ic := range l.Icons {
		sb.WriteString(" ")
		sb.WriteString(ic.Icon.Glyph())
	}

	line := sb.String()
	width := t.rowWidth() - 1
	if selected {
		return th.Selected.Width(width).MaxWidth(width).Render(line)
	}
	return th.Renderer.NewStyle().MaxWidth(width).Render(line)
}

// buildTreePrefix builds the indentation and branch characters for a row.
func buildTreePrefix(row trail.Row) string {
	if row.Depth == 0 {
		return ""
	}
	var sb strings.Builder
	for _, last := range row.Trail {
		if last {
			sb.WriteString("    ")
		} else {
			sb.WriteString("│   ")
		}
	}
	if row.IsLast {
		sb.WriteString("└── ")
	} else {
		sb.WriteString("├── ")
	}
	return sb.String()
}

func expandIndicator(n *trail.Node) string {
	switch {
	case len(n.Children) == 0:
		return "•"
	case n.Expanded:
		return "▾"
	}
	return "▸"
}

func nodeLabel(n *trail.Node) string {
	switch n.Depth {
	case 0:
		return n.ID()
	case 1:
		return n.VictimLabel + ": " + n.Data.Name.Trimmed()
	}
	return n.Data.Name.Trimmed()
}

// nodeMeta is the muted detail after the account: layer, bank and amount.
func nodeMeta(n *trail.Node) string {
	if n.Depth < 2 {
		if n.Depth == 1 && n.Data.Bank != "" {
			return n.Data.Bank
		}
		return ""
	}
	parts := []string{fmt.Sprintf("L%d", n.DisplayLayer())}
	if n.Data.Bank != "" {
		parts = append(parts, n.Data.Bank)
	}
	parts = append(parts, model.FormatINR(n.Data.Amount.OrZero()))
	if n.Burst {
		parts = append(parts, fmt.Sprintf("%d hidden", n.BurstCount))
	}
	return strings.Join(parts, " · ")
}

// RowAt maps a y offset inside the tree view (0 is the header) to a row
// index, or -1.
func (t *TreeModel) RowAt(y int) int {
	if y < 1 {
		return -1
	}
	start, end := t.visibleRange()
	i := start + y - 1
	if i < start || i >= end {
		return -1
	}
	return i
}

// NodeAt returns the node on row i.
func (t *TreeModel) NodeAt(i int) *trail.Node {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i].Node
}

// IconAt reports the icon under column x on row i.
func (t *TreeModel) IconAt(i, x int) (trail.Icon, bool) {
	if i < 0 || i >= len(t.rows) {
		return 0, false
	}
	for _, span := range t.layoutRow(t.rows[i]).Icons {
		if x >= span.Start && x < span.End {
			return span.Icon, true
		}
	}
	return 0, false
}

// SetCursor moves the cursor to row i.
func (t *TreeModel) SetCursor(i int) {
	if i < 0 || i >= len(t.rows) {
		return
	}
	t.cursor = i
	t.ensureCursorVisible()
}

func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	visibleCount := t.effectiveVisibleCount()
	start = max(t.viewportOffset, 0)
	end = start + visibleCount
	if end > len(t.rows) {
		end = len(t.rows)
		start = max(end-visibleCount, 0)
	}
	return start, end
}

// effectiveVisibleCount is the number of rows that fit below the header,
// leaving a line for the position indicator when scrolling.
func (t *TreeModel) effectiveVisibleCount() int {
	visibleCount := t.height - 1
	if visibleCount <= 0 {
		visibleCount = 19
	}
	if len(t.rows) > visibleCount {
		visibleCount--
	}
	return max(visibleCount, 1)
}

func (t *TreeModel) ensureCursorVisible() {
	if len(t.rows) == 0 {
		return
	}
	visibleCount := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	}
	if t.cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = t.cursor - visibleCount + 1
	}
	maxOffset := max(len(t.rows)-visibleCount, 0)
	t.viewportOffset = min(max(t.viewportOffset, 0), maxOffset)
}
