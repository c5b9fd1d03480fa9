package hierarchy

import (
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// applyMeasures evaluates the derived fields on summed totals. A formula is
// skipped when none of its operands was summed.
func applyMeasures(sums map[string]decimal.Decimal, m entity.Measures) {
	for _, d := range m.Differences {
		a, okA := sums[d.Minuend]
		b, okB := sums[d.Subtrahend]
		if !okA && !okB {
			continue
		}
		sums[d.Target] = a.Sub(b)
	}
	for _, p := range m.Percents {
		num, okN := sums[p.Numerator]
		den, okD := sums[p.Denominator]
		if !okN && !okD {
			continue
		}
		sums[p.Target] = Percent(num, den)
	}
}

// Percent returns num / den * 100, and 0 when den is 0.
func Percent(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).Mul(hundred)
}
