package holds

import (
	"slices"
	"sort"

	"github.com/vanderheijden86/fundtrail/pkg/metrics"
	"github.com/vanderheijden86/fundtrail/pkg/model"
)

// Set is a set of formatted display values.
type Set map[string]struct{}

// NewSet returns a set holding values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) clone() Set {
	c := make(Set, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// FilterState maps a column to its accepted values. A missing column is not
// filtered; an empty set accepts nothing.
type FilterState map[Column]Set

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota + 1
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	}
	return ""
}

// SortState is the single active sort. The zero value means unsorted.
type SortState struct {
	Column    Column
	Direction Direction
}

// Active reports whether a sort is set.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != 0
}

// ApplyFilters returns the rows whose formatted value is accepted by every
// filtered column, in their original order.
func ApplyFilters(rows []model.HoldRow, filters FilterState) []model.HoldRow {
	defer metrics.Timer(metrics.HoldFilter)()

	out := make([]model.HoldRow, 0, len(rows))
	for _, row := range rows {
		if accepts(row, filters) {
			out = append(out, row)
		}
	}
	return out
}

func accepts(row model.HoldRow, filters FilterState) bool {
	for col, allowed := range filters {
		if !allowed.Has(FormatValue(row, col)) {
			return false
		}
	}
	return true
}

// SortRows returns a stably sorted copy of rows. Amount and layer compare
// numerically with missing values as zero; other columns compare raw
// strings. An inactive sort returns the rows unchanged.
func SortRows(rows []model.HoldRow, s SortState) []model.HoldRow {
	if !s.Active() {
		return rows
	}
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b model.HoldRow) int {
		c := compareKeys(s.Column, keyOf(a, s.Column), keyOf(b, s.Column))
		if s.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Universe returns the sorted unique formatted values of col over rows.
func Universe(rows []model.HoldRow, col Column) []string {
	set := make(Set, len(rows))
	for _, row := range rows {
		set[FormatValue(row, col)] = struct{}{}
	}
	return set.Sorted()
}
