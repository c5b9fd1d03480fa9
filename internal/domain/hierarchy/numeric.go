package hierarchy

import (
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// IsNumeric reports whether v holds a number (as opposed to a numeric-looking string).
func IsNumeric(v interface{}) bool {
	switch v.(type) {
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		json.Number, decimal.Decimal:
		return true
	}
	return false
}

// toDecimal coerces any cell value to a decimal. Anything that does not
// parse, including nil, NaN and booleans, is zero.
func toDecimal(v interface{}) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int8:
		return decimal.NewFromInt(int64(n))
	case int16:
		return decimal.NewFromInt(int64(n))
	case int32:
		return decimal.NewFromInt32(n)
	case int64:
		return decimal.NewFromInt(n)
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(n)), 0)
	case uint8:
		return decimal.NewFromInt(int64(n))
	case uint16:
		return decimal.NewFromInt(int64(n))
	case uint32:
		return decimal.NewFromInt(int64(n))
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
	case json.Number:
		return parseDecimal(string(n))
	case string:
		return parseDecimal(n)
	}
	return decimal.Zero
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// sampleNumericFields returns the fields of the sample row that hold numbers,
// grouping columns excluded, sorted by name.
func sampleNumericFields(sample entity.FlatRow) []string {
	fields := make([]string, 0, len(sample))
	for k, v := range sample {
		if entity.IsGroupingField(k) || !IsNumeric(v) {
			continue
		}
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// ToFloat coerces any cell value to a float64 the way Aggregate does.
func ToFloat(v interface{}) float64 {
	return toDecimal(v).InexactFloat64()
}
