package hierarchy

import (
	"sort"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
)

// ViewState is the accordion state of a grid: the set of expanded node keys.
// Values are immutable; every change returns a new ViewState.
type ViewState struct {
	expanded map[string]struct{}
}

// NewViewState returns a state with the given nodes expanded.
func NewViewState(keys ...string) ViewState {
	s := ViewState{expanded: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.expanded[k] = struct{}{}
	}
	return s
}

// DefaultViewState opens the rows whose default is expanded (level 0).
func DefaultViewState(rows []entity.OutputRow) ViewState {
	var keys []string
	for _, r := range rows {
		if r.Expanded {
			keys = append(keys, r.Key)
		}
	}
	return NewViewState(keys...)
}

// ExpandAll opens every group row.
func ExpandAll(rows []entity.OutputRow) ViewState {
	var keys []string
	for _, r := range rows {
		if r.IsGroup {
			keys = append(keys, r.Key)
		}
	}
	return NewViewState(keys...)
}

// IsExpanded reports whether the node is open.
func (s ViewState) IsExpanded(key string) bool {
	_, ok := s.expanded[key]
	return ok
}

// Keys returns the expanded node keys, sorted.
func (s ViewState) Keys() []string {
	keys := make([]string, 0, len(s.expanded))
	for k := range s.expanded {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s ViewState) clone() ViewState {
	c := ViewState{expanded: make(map[string]struct{}, len(s.expanded)+1)}
	for k := range s.expanded {
		c.expanded[k] = struct{}{}
	}
	return c
}

// Toggle flips one node.
func (s ViewState) Toggle(key string) ViewState {
	c := s.clone()
	if _, ok := c.expanded[key]; ok {
		delete(c.expanded, key)
	} else {
		c.expanded[key] = struct{}{}
	}
	return c
}

// Expand opens nodes.
func (s ViewState) Expand(keys ...string) ViewState {
	c := s.clone()
	for _, k := range keys {
		c.expanded[k] = struct{}{}
	}
	return c
}

// Collapse closes nodes.
func (s ViewState) Collapse(keys ...string) ViewState {
	c := s.clone()
	for _, k := range keys {
		delete(c.expanded, k)
	}
	return c
}

// VisibilityMask reports, per row, whether the row is shown under state.
// Level-0, level-1 and grand-total rows are always shown; a level-2 row needs
// its level-1 parent open; a detail row needs its level-2 parent and level-1
// grandparent open.
func VisibilityMask(rows []entity.OutputRow, state ViewState) []bool {
	parentOf := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.ParentKey != "" {
			parentOf[r.Key] = r.ParentKey
		}
	}

	mask := make([]bool, len(rows))
	for i, r := range rows {
		switch r.Level {
		case entity.LevelGrouping:
			mask[i] = state.IsExpanded(r.ParentKey)
		case entity.LevelDetail:
			mask[i] = state.IsExpanded(r.ParentKey) && state.IsExpanded(parentOf[r.ParentKey])
		default:
			mask[i] = true
		}
	}
	return mask
}

// Visible returns the rows shown under state, in order.
func Visible(rows []entity.OutputRow, state ViewState) []entity.OutputRow {
	mask := VisibilityMask(rows, state)
	out := make([]entity.OutputRow, 0, len(rows))
	for i, r := range rows {
		if mask[i] {
			out = append(out, r)
		}
	}
	return out
}
