package entity

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Grouping columns every budget row is expected to carry.
const (
	FieldGroupType    = "GROUP_TYPE"
	FieldGroupTotal   = "GROUP_TOTAL"
	FieldGroupingHead = "GROUPING_HEAD"
	FieldGrouping     = "GROUPING"
)

// GroupingFields lists the grouping columns in hierarchy order.
var GroupingFields = []string{FieldGroupType, FieldGroupTotal, FieldGroupingHead, FieldGrouping}

// IsGroupingField reports whether name is one of the grouping columns.
func IsGroupingField(name string) bool {
	for _, f := range GroupingFields {
		if f == name {
			return true
		}
	}
	return false
}

// Hierarchy levels of an OutputRow.
const (
	LevelGrandTotal   = -1
	LevelGroupType    = 0
	LevelGroupingHead = 1
	LevelGrouping     = 2
	LevelDetail       = 3
)

// FlatRow is one budget record as delivered by a row source: column name to value.
type FlatRow map[string]interface{}

// String returns the value of a column as a string. Missing and nil values
// are the empty string.
func (r FlatRow) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy of the row.
func (r FlatRow) Clone() FlatRow {
	out := make(FlatRow, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// OutputRow is a FlatRow placed in the budget hierarchy.
type OutputRow struct {
	Fields FlatRow

	Key   string
	Label string

	Level        int
	IsGroup      bool
	IsGrandTotal bool
	// Expanded is the default accordion state; the live state lives in a ViewState.
	Expanded   bool
	ChildCount int

	ParentGroupType    string
	ParentGroupingHead string
	ParentGrouping     string
	ParentKey          string
}

// Number returns a numeric field of the row, 0 when absent or not a float64.
func (r OutputRow) Number(field string) float64 {
	if f, ok := r.Fields[field].(float64); ok {
		return f
	}
	return 0
}

// MarshalJSON flattens the row fields and the hierarchy metadata into one object.
func (r OutputRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(r.Fields)+12)
	for k, v := range r.Fields {
		m[k] = v
	}
	m["_key"] = r.Key
	m["_label"] = r.Label
	m["_level"] = r.Level
	m["_isGroup"] = r.IsGroup
	m["_isGrandTotal"] = r.IsGrandTotal
	m["_expanded"] = r.Expanded
	m["_childCount"] = r.ChildCount
	if r.ParentGroupType != "" {
		m["_parentGroupType"] = r.ParentGroupType
	}
	if r.ParentGroupingHead != "" {
		m["_parentGroupingHead"] = r.ParentGroupingHead
	}
	if r.ParentGrouping != "" {
		m["_parentGrouping"] = r.ParentGrouping
	}
	if r.ParentKey != "" {
		m["_parentKey"] = r.ParentKey
	}
	return json.Marshal(m)
}

// FieldNames returns the sorted column names of a set of rows.
func FieldNames(rows []FlatRow) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
