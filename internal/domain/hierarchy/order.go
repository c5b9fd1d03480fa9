package hierarchy

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// UnknownPriority is the sort priority of a GROUP_TOTAL missing from the table.
const UnknownPriority = 999

// groupTotalPriority is the fixed display order of the grand-total buckets.
var groupTotalPriority = map[string]int{
	"HO":                           1,
	"Inactive & Other Cost Center": 2,
	"Store Area":                   3,
	"Big Smart":                    4,
}

// Priority returns the display priority of a GROUP_TOTAL value.
func Priority(groupTotal string) int {
	if p, ok := groupTotalPriority[groupTotal]; ok {
		return p
	}
	return UnknownPriority
}

// HasGrandTotal reports whether a GROUP_TOTAL value opens a grand-total bucket.
func HasGrandTotal(groupTotal string) bool {
	return groupTotal != "" && groupTotal != "0"
}

func newCollator(locale string) (*collate.Collator, error) {
	tag := language.English
	if locale != "" {
		t, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		tag = t
	}
	return collate.New(tag), nil
}

// sortGroups orders groups by GROUP_TOTAL priority, then GROUP_TYPE in
// collation order. Byte order of GROUP_TYPE and GROUP_TOTAL breaks the
// remaining ties so the order never depends on input order.
func sortGroups(groups []*group, c *collate.Collator) {
	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i], groups[j]
		pi, pj := Priority(gi.groupTotal), Priority(gj.groupTotal)
		if pi != pj {
			return pi < pj
		}
		if cmp := c.CompareString(gi.groupType, gj.groupType); cmp != 0 {
			return cmp < 0
		}
		if gi.groupType != gj.groupType {
			return gi.groupType < gj.groupType
		}
		return gi.groupTotal < gj.groupTotal
	})
}

func sortSubgroups(groups []*group, c *collate.Collator) {
	less := func(a, b string) bool {
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return a < b
	}
	for _, g := range groups {
		sort.SliceStable(g.heads, func(i, j int) bool { return less(g.heads[i].name, g.heads[j].name) })
		for _, h := range g.heads {
			sort.SliceStable(h.groupings, func(i, j int) bool { return less(h.groupings[i].name, h.groupings[j].name) })
		}
	}
}
