package holds

import (
	"github.com/vanderheijden86/fundtrail/pkg/model"
)

// Controller owns the hold table state: the fetched rows, the per-column
// filters, the active sort and at most one open filter menu.
type Controller struct {
	rows    []model.HoldRow
	filters FilterState
	sort    SortState
	menu    *FilterMenu
}

// NewController returns a controller with no rows.
func NewController() *Controller {
	return &Controller{filters: FilterState{}}
}

// Load replaces the rows and resets filters, sort and menu.
func (c *Controller) Load(rows []model.HoldRow) {
	c.rows = rows
	c.filters = FilterState{}
	c.sort = SortState{}
	c.menu = nil
}

// All returns the unfiltered rows in fetch order.
func (c *Controller) All() []model.HoldRow {
	return c.rows
}

// Rows returns the rows to display: filtered, then sorted.
func (c *Controller) Rows() []model.HoldRow {
	return SortRows(ApplyFilters(c.rows, c.filters), c.sort)
}

// Filters returns the active filter state. Callers must not modify it.
func (c *Controller) Filters() FilterState {
	return c.filters
}

// Filtered reports whether col has a filter entry.
func (c *Controller) Filtered(col Column) bool {
	_, ok := c.filters[col]
	return ok
}

// Sort returns the active sort.
func (c *Controller) Sort() SortState {
	return c.sort
}

// SetSort makes (col, dir) the only active sort.
func (c *Controller) SetSort(col Column, dir Direction) {
	c.sort = SortState{Column: col, Direction: dir}
}

// ClearSort removes the active sort.
func (c *Controller) ClearSort() {
	c.sort = SortState{}
}

// SetFilter stores an accepted set for col.
func (c *Controller) SetFilter(col Column, values Set) {
	c.filters[col] = values.clone()
}

// ClearFilter stores an empty accepted set for col, hiding every row.
func (c *Controller) ClearFilter(col Column) {
	c.filters[col] = Set{}
}

// ResetFilter removes the filter entry for col.
func (c *Controller) ResetFilter(col Column) {
	delete(c.filters, col)
}

// Menu returns the open filter menu, or nil.
func (c *Controller) Menu() *FilterMenu {
	return c.menu
}

// OpenMenu opens the filter menu for col, closing any other. The universe is
// computed over all rows, not just the visible ones, so values hidden by
// other filters can still be selected.
func (c *Controller) OpenMenu(col Column) *FilterMenu {
	universe := Universe(c.rows, col)
	selected, ok := c.filters[col]
	if ok {
		selected = selected.clone()
	} else {
		selected = NewSet(universe...)
	}
	c.menu = &FilterMenu{Column: col, Universe: universe, Selected: selected}
	return c.menu
}

// CloseMenu discards the open menu without applying it.
func (c *Controller) CloseMenu() {
	c.menu = nil
}

// ApplyMenu stores the menu's selection as the column filter and closes it.
func (c *Controller) ApplyMenu() {
	if c.menu == nil {
		return
	}
	c.filters[c.menu.Column] = c.menu.Selected.clone()
	c.menu = nil
}

// ClearMenuFilter stores the empty set for the menu's column and closes it.
func (c *Controller) ClearMenuFilter() {
	if c.menu == nil {
		return
	}
	c.ClearFilter(c.menu.Column)
	c.menu = nil
}

// ResetMenuFilter removes the menu column's filter and closes the menu.
func (c *Controller) ResetMenuFilter() {
	if c.menu == nil {
		return
	}
	c.ResetFilter(c.menu.Column)
	c.menu = nil
}

// SortMenu sorts by the menu's column and closes it.
func (c *Controller) SortMenu(dir Direction) {
	if c.menu == nil {
		return
	}
	c.SetSort(c.menu.Column, dir)
	c.menu = nil
}

// FilterMenu is the checkbox list for one column. Edits change only the
// menu until the controller applies them.
type FilterMenu struct {
	Column   Column
	Universe []string
	Selected Set
}

// Toggle flips one value.
func (m *FilterMenu) Toggle(value string) {
	if m.Selected.Has(value) {
		delete(m.Selected, value)
		return
	}
	m.Selected[value] = struct{}{}
}

// SelectAll checks every value in the universe.
func (m *FilterMenu) SelectAll() {
	m.Selected = NewSet(m.Universe...)
}

// SelectNone unchecks every value.
func (m *FilterMenu) SelectNone() {
	m.Selected = Set{}
}

// AllSelected reports whether every universe value is checked.
func (m *FilterMenu) AllSelected() bool {
	for _, v := range m.Universe {
		if !m.Selected.Has(v) {
			return false
		}
	}
	return true
}
