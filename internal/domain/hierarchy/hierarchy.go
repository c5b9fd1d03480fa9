// Package hierarchy folds flat budget rows into the GROUP_TYPE → GROUPING_HEAD
// → GROUPING → detail tree shown by the planning grid, with subtotal rows at
// every level and grand-total rows per GROUP_TOTAL bucket.
//
// Aggregate is a pure function: it keeps no state between calls and never
// mutates its input. Accordion state is kept apart from the rows in a
// ViewState.
package hierarchy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when the input is not a sequence of row objects.
var ErrInvalidInput = errors.New("invalid input: expected a sequence of row objects")

// Options tunes Aggregate. The zero value reproduces the grid's behavior.
type Options struct {
	// NumericFields declares the summed columns. When empty, the numeric
	// columns of the first row of each summarized set are used.
	NumericFields []string
	// SortSubgroups orders GROUPING_HEAD and GROUPING by collation instead
	// of first-seen order.
	SortSubgroups bool
	// Locale of the collator ordering GROUP_TYPE (BCP 47, default "en").
	Locale string
	// Measures overrides the derived-field formulas.
	Measures entity.Measures
}

type indexedRow struct {
	index int
	row   entity.FlatRow
}

type grouping struct {
	name string
	rows []indexedRow
}

type head struct {
	name      string
	groupings []*grouping
	index     map[string]*grouping
	rows      []indexedRow
}

type group struct {
	groupType  string
	groupTotal string
	heads      []*head
	index      map[string]*head
	rows       []indexedRow
}

// Aggregate turns flat rows into the ordered hierarchy of summary, detail and
// grand-total rows. Every input row appears exactly once as a level-3 row.
func Aggregate(rows []entity.FlatRow, opts Options) ([]entity.OutputRow, error) {
	for i, r := range rows {
		if r == nil {
			return nil, fmt.Errorf("%w: row %d is not an object", ErrInvalidInput, i)
		}
	}

	collator, err := newCollator(opts.Locale)
	if err != nil {
		return nil, err
	}

	measures := opts.Measures
	if measures.IsZero() {
		measures = entity.DefaultMeasures()
	}
	s := summarizer{numericFields: opts.NumericFields, measures: measures}

	groups := buildGroups(rows)
	sortGroups(groups, collator)
	if opts.SortSubgroups {
		sortSubgroups(groups, collator)
	}

	// Grand totals cover every group sharing a GROUP_TOTAL, in sorted order.
	totalRows := make(map[string][]indexedRow)
	totalGroups := make(map[string]int)
	for _, g := range groups {
		if !HasGrandTotal(g.groupTotal) {
			continue
		}
		totalRows[g.groupTotal] = append(totalRows[g.groupTotal], g.rows...)
		totalGroups[g.groupTotal]++
	}
	flushed := make(map[string]int)

	out := make([]entity.OutputRow, 0, len(rows)+4*len(groups))
	for i, g := range groups {
		gKey := groupKey(g.groupType, g.groupTotal)
		label := g.groupType
		if HasGrandTotal(g.groupTotal) {
			label = g.groupType + " - " + g.groupTotal
		}

		fields := s.summarize(g.rows)
		fields[entity.FieldGroupType] = g.groupType
		fields[entity.FieldGroupTotal] = g.groupTotal
		out = append(out, entity.OutputRow{
			Fields:     fields,
			Key:        gKey,
			Label:      label,
			Level:      entity.LevelGroupType,
			IsGroup:    true,
			Expanded:   true,
			ChildCount: len(g.heads),
		})

		for _, h := range g.heads {
			hKey := gKey + "/" + keySegment(h.name)
			fields := s.summarize(h.rows)
			fields[entity.FieldGroupType] = g.groupType
			fields[entity.FieldGroupTotal] = g.groupTotal
			fields[entity.FieldGroupingHead] = h.name
			out = append(out, entity.OutputRow{
				Fields:          fields,
				Key:             hKey,
				Label:           h.name,
				Level:           entity.LevelGroupingHead,
				IsGroup:         true,
				ChildCount:      len(h.groupings),
				ParentGroupType: g.groupType,
				ParentKey:       gKey,
			})

			for _, gr := range h.groupings {
				grKey := hKey + "/" + keySegment(gr.name)
				fields := s.summarize(gr.rows)
				fields[entity.FieldGroupType] = g.groupType
				fields[entity.FieldGroupTotal] = g.groupTotal
				fields[entity.FieldGroupingHead] = h.name
				fields[entity.FieldGrouping] = gr.name
				out = append(out, entity.OutputRow{
					Fields:             fields,
					Key:                grKey,
					Label:              gr.name,
					Level:              entity.LevelGrouping,
					IsGroup:            true,
					ChildCount:         len(gr.rows),
					ParentGroupType:    g.groupType,
					ParentGroupingHead: h.name,
					ParentKey:          hKey,
				})

				for _, d := range gr.rows {
					out = append(out, entity.OutputRow{
						Fields:             d.row.Clone(),
						Key:                grKey + "#" + strconv.Itoa(d.index),
						Label:              gr.name,
						Level:              entity.LevelDetail,
						ParentGroupType:    g.groupType,
						ParentGroupingHead: h.name,
						ParentGrouping:     gr.name,
						ParentKey:          grKey,
					})
				}
			}
		}

		if !HasGrandTotal(g.groupTotal) {
			continue
		}
		if i < len(groups)-1 && groups[i+1].groupTotal == g.groupTotal {
			continue
		}
		flushed[g.groupTotal]++
		tKey := "total:" + keySegment(g.groupTotal)
		if n := flushed[g.groupTotal]; n > 1 {
			tKey += "#" + strconv.Itoa(n)
		}
		totals := s.summarize(totalRows[g.groupTotal])
		totals[entity.FieldGroupTotal] = g.groupTotal
		out = append(out, entity.OutputRow{
			Fields:       totals,
			Key:          tKey,
			Label:        "Grand Total " + g.groupTotal,
			Level:        entity.LevelGrandTotal,
			IsGrandTotal: true,
			ChildCount:   totalGroups[g.groupTotal],
		})
	}

	return out, nil
}

func groupKey(groupType, groupTotal string) string {
	return keySegment(groupType) + "|" + keySegment(groupTotal)
}

// keyEscaper percent-encodes the node key separators so a name holding one
// cannot produce another node's key.
var keyEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "|", "%7C", "#", "%23")

func keySegment(name string) string {
	return keyEscaper.Replace(name)
}

// buildGroups clusters rows by (GROUP_TYPE, GROUP_TOTAL), then GROUPING_HEAD,
// then GROUPING, keeping first-seen order at every level.
func buildGroups(rows []entity.FlatRow) []*group {
	type bucket struct{ groupType, groupTotal string }

	var groups []*group
	byKey := make(map[bucket]*group)

	for i, r := range rows {
		ir := indexedRow{index: i, row: r}
		gType, gTotal := r.String(entity.FieldGroupType), r.String(entity.FieldGroupTotal)

		k := bucket{gType, gTotal}
		g, ok := byKey[k]
		if !ok {
			g = &group{groupType: gType, groupTotal: gTotal, index: make(map[string]*head)}
			byKey[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, ir)

		hName := r.String(entity.FieldGroupingHead)
		h, ok := g.index[hName]
		if !ok {
			h = &head{name: hName, index: make(map[string]*grouping)}
			g.index[hName] = h
			g.heads = append(g.heads, h)
		}
		h.rows = append(h.rows, ir)

		grName := r.String(entity.FieldGrouping)
		gr, ok := h.index[grName]
		if !ok {
			gr = &grouping{name: grName}
			h.index[grName] = gr
			h.groupings = append(h.groupings, gr)
		}
		gr.rows = append(gr.rows, ir)
	}
	return groups
}

type summarizer struct {
	numericFields []string
	measures      entity.Measures
}

// summarize sums the numeric columns of rows and evaluates the derived
// fields on the sums.
func (s summarizer) summarize(rows []indexedRow) entity.FlatRow {
	fields := s.numericFields
	if len(fields) == 0 && len(rows) > 0 {
		fields = sampleNumericFields(rows[0].row)
	}

	sums := make(map[string]decimal.Decimal, len(fields))
	for _, f := range fields {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(toDecimal(r.row[f]))
		}
		sums[f] = total
	}

	applyMeasures(sums, s.measures)

	out := make(entity.FlatRow, len(sums)+4)
	for f, d := range sums {
		out[f] = d.InexactFloat64()
	}
	return out
}
