package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/fundtrail/pkg/holds"
	"github.com/vanderheijden86/fundtrail/pkg/model"
)

const (
	maxHoldColumnWidth = 28
	filterMenuWidth    = 36
)

// revealAccountMsg asks the root model to show an account in the tree.
type revealAccountMsg struct {
	account string
}

// HoldsModel is the put-on-hold table: a cursor over the filtered, sorted
// rows of a holds.Controller, a selected column for sort and filter, and the
// filter menu when one is open.
type HoldsModel struct {
	theme Theme
	ctrl  *holds.Controller
	rows  []model.HoldRow

	cursor     int
	offset     int
	column     int
	menuCursor int

	width   int
	height  int
	message string
}

// NewHoldsModel creates an empty table waiting for rows.
func NewHoldsModel(theme Theme) HoldsModel {
	return HoldsModel{
		theme:   theme,
		ctrl:    holds.NewController(),
		message: "Loading put-on-hold transactions...",
	}
}

// SetRows loads fetched rows, clearing filters and sort.
func (h *HoldsModel) SetRows(rows []model.HoldRow) {
	h.ctrl.Load(rows)
	h.message = ""
	if len(rows) == 0 {
		h.message = "No put-on-hold transactions found for this complaint."
	}
	h.cursor, h.offset = 0, 0
	h.refresh()
}

// SetMessage replaces the table with a status line.
func (h *HoldsModel) SetMessage(msg string) {
	h.ctrl.Load(nil)
	h.rows = nil
	h.message = msg
}

func (h *HoldsModel) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.ensureCursorVisible()
}

// Controller exposes the table state, for tests and CLI-driven setup.
func (h *HoldsModel) Controller() *holds.Controller {
	return h.ctrl
}

// Rows returns the displayed rows.
func (h *HoldsModel) Rows() []model.HoldRow {
	return h.rows
}

// MenuOpen reports whether the filter menu has focus.
func (h *HoldsModel) MenuOpen() bool {
	return h.ctrl.Menu() != nil
}

// SelectedColumn returns the column sort and filter keys act on.
func (h *HoldsModel) SelectedColumn() holds.Column {
	return holds.Columns[h.column]
}

// SelectedRow returns the row under the cursor.
func (h *HoldsModel) SelectedRow() (model.HoldRow, bool) {
	if h.cursor < 0 || h.cursor >= len(h.rows) {
		return model.HoldRow{}, false
	}
	return h.rows[h.cursor], true
}

func (h *HoldsModel) refresh() {
	h.rows = h.ctrl.Rows()
	if h.cursor >= len(h.rows) {
		h.cursor = len(h.rows) - 1
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
	h.ensureCursorVisible()
}

// CycleSort moves the selected column through ascending, descending and
// unsorted. Other columns lose their sort.
func (h *HoldsModel) CycleSort() {
	col := h.SelectedColumn()
	s := h.ctrl.Sort()
	switch {
	case s.Column != col || !s.Active():
		h.ctrl.SetSort(col, holds.Ascending)
	case s.Direction == holds.Ascending:
		h.ctrl.SetSort(col, holds.Descending)
	default:
		h.ctrl.ClearSort()
	}
	h.refresh()
}

// OpenMenu opens the filter menu on the selected column.
func (h *HoldsModel) OpenMenu() {
	if len(h.ctrl.All()) == 0 {
		return
	}
	h.ctrl.OpenMenu(h.SelectedColumn())
	h.menuCursor = 0
}

// Update handles keys for the table and its filter menu.
func (h HoldsModel) Update(msg tea.KeyMsg) (HoldsModel, tea.Cmd) {
	if menu := h.ctrl.Menu(); menu != nil {
		return h.updateMenu(menu, msg), nil
	}

	switch msg.String() {
	case "up", "k":
		if h.cursor > 0 {
			h.cursor--
			h.ensureCursorVisible()
		}
	case "down", "j":
		if h.cursor < len(h.rows)-1 {
			h.cursor++
			h.ensureCursorVisible()
		}
	case "left", "h":
		if h.column > 0 {
			h.column--
		}
	case "right", "l":
		if h.column < len(holds.Columns)-1 {
			h.column++
		}
	case "home", "g":
		h.cursor = 0
		h.ensureCursorVisible()
	case "end", "G":
		h.cursor = max(len(h.rows)-1, 0)
		h.ensureCursorVisible()
	case "s":
		h.CycleSort()
	case "f":
		h.OpenMenu()
	case "x":
		h.ctrl.ResetFilter(h.SelectedColumn())
		h.refresh()
	case "enter":
		if row, ok := h.SelectedRow(); ok && strings.TrimSpace(row.AccountNumber) != "" {
			account := row.AccountNumber
			return h, func() tea.Msg { return revealAccountMsg{account: account} }
		}
	}
	return h, nil
}

func (h HoldsModel) updateMenu(menu *holds.FilterMenu, msg tea.KeyMsg) HoldsModel {
	switch msg.String() {
	case "up", "k":
		if h.menuCursor > 0 {
			h.menuCursor--
		}
	case "down", "j":
		if h.menuCursor < len(menu.Universe)-1 {
			h.menuCursor++
		}
	case " ":
		if h.menuCursor < len(menu.Universe) {
			menu.Toggle(menu.Universe[h.menuCursor])
		}
	case "a":
		menu.SelectAll()
	case "n":
		menu.SelectNone()
	case "enter":
		h.ctrl.ApplyMenu()
	case "c":
		h.ctrl.ClearMenuFilter()
	case "r":
		h.ctrl.ResetMenuFilter()
	case "<":
		h.ctrl.SortMenu(holds.Ascending)
	case ">":
		h.ctrl.SortMenu(holds.Descending)
	case "esc", "q":
		h.ctrl.CloseMenu()
	}
	if h.ctrl.Menu() == nil {
		h.refresh()
	}
	return h
}

// View renders the table, with the filter menu beside it when open.
func (h HoldsModel) View() string {
	if h.message != "" && len(h.ctrl.All()) == 0 {
		return h.theme.MutedText.Render(h.message)
	}
	menu := h.ctrl.Menu()
	if menu == nil {
		return h.renderTable(h.tableWidth())
	}
	tw := max(h.tableWidth()-filterMenuWidth-1, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top, h.renderTable(tw), " ", h.renderMenu(menu))
}

func (h HoldsModel) tableWidth() int {
	if h.width <= 0 {
		return 100
	}
	return h.width
}

// columnWidths sizes each column to its widest value over all rows, so the
// layout does not jump when filters change.
func (h HoldsModel) columnWidths() []int {
	widths := make([]int, len(holds.Columns))
	for i, col := range holds.Columns {
		widths[i] = cellWidth(col.Title()) + 2
		for _, row := range h.ctrl.All() {
			widths[i] = max(widths[i], cellWidth(holds.FormatValue(row, col)))
		}
		widths[i] = min(widths[i], maxHoldColumnWidth)
	}
	return widths
}

func (h HoldsModel) renderTable(width int) string {
	th := h.theme
	widths := h.columnWidths()
	sort := h.ctrl.Sort()

	var header []string
	for i, col := range holds.Columns {
		title := col.Title()
		if sort.Active() && sort.Column == col {
			if sort.Direction == holds.Ascending {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		if h.ctrl.Filtered(col) {
			title += "*"
		}
		cell := fit(title, widths[i])
		if i == h.column {
			cell = th.Renderer.NewStyle().Underline(true).Render(cell)
		}
		header = append(header, cell)
	}

	var sb strings.Builder
	sb.WriteString(th.Header.Width(width).MaxWidth(width).Render(strings.Join(header, " ")))
	sb.WriteString("\n")

	if len(h.rows) == 0 {
		sb.WriteString(th.MutedText.Render("No rows match the current filters. Press x to reset the column filter."))
		return sb.String()
	}

	start, end := h.visibleRange()
	for i := start; i < end; i++ {
		row := h.rows[i]
		cells := make([]string, len(holds.Columns))
		for c, col := range holds.Columns {
			v := holds.FormatValue(row, col)
			if col.Numeric() {
				cells[c] = padLeft(truncate(v, widths[c]), widths[c])
			} else {
				cells[c] = fit(v, widths[c])
			}
		}
		line := strings.Join(cells, " ")
		style := th.Base
		if i == h.cursor {
			style = th.Selected
		}
		sb.WriteString(style.Width(width).MaxWidth(width).Render(line))
		sb.WriteString("\n")
	}

	status := fmt.Sprintf(" %d of %d rows", len(h.rows), len(h.ctrl.All()))
	if sort.Active() {
		status += fmt.Sprintf(" · sorted by %s %s", sort.Column.Title(), sort.Direction)
	}
	sb.WriteString(th.MutedText.Render(status))
	return sb.String()
}

func (h HoldsModel) renderMenu(menu *holds.FilterMenu) string {
	th := h.theme
	var sb strings.Builder
	sb.WriteString(th.Renderer.NewStyle().Bold(true).Foreground(th.Primary).Render("Filter: " + menu.Column.Title()))
	sb.WriteString("\n")

	visible := max(h.listHeight()-6, 3)
	start := 0
	if h.menuCursor >= visible {
		start = h.menuCursor - visible + 1
	}
	end := min(start+visible, len(menu.Universe))
	for i := start; i < end; i++ {
		v := menu.Universe[i]
		box := "[ ]"
		if menu.Selected.Has(v) {
			box = "[x]"
		}
		line := fit(box+" "+v, filterMenuWidth-4)
		if i == h.menuCursor {
			line = th.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(th.keyHint("space", "toggle") + "  " + th.keyHint("a/n", "all/none"))
	sb.WriteString("\n")
	sb.WriteString(th.keyHint("enter", "apply") + "  " + th.keyHint("c", "clear") + "  " + th.keyHint("r", "reset"))
	sb.WriteString("\n")
	sb.WriteString(th.keyHint("</>", "sort") + "  " + th.keyHint("esc", "close"))
	return th.panel(sb.String(), filterMenuWidth, 0, true)
}

// listHeight is the number of table rows that fit under the header and
// status line.
func (h HoldsModel) listHeight() int {
	if h.height <= 2 {
		return 18
	}
	return h.height - 2
}

func (h HoldsModel) visibleRange() (start, end int) {
	n := h.listHeight()
	start = h.offset
	end = min(start+n, len(h.rows))
	return start, end
}

func (h *HoldsModel) ensureCursorVisible() {
	n := h.listHeight()
	if h.cursor < h.offset {
		h.offset = h.cursor
	}
	if h.cursor >= h.offset+n {
		h.offset = h.cursor - n + 1
	}
	h.offset = min(max(h.offset, 0), max(len(h.rows)-n, 0))
}
