package entity

import (
	"strconv"
	"strings"
)

// Column formats.
const (
	FormatCount   = "count"
	FormatMoney   = "money"
	FormatPercent = "percent"
)

// Column is one metric column of a company grid. Header may contain the
// year placeholders {Y}, {Y-1} and {Y+1}.
type Column struct {
	Field  string `json:"field" yaml:"field" toml:"field"`
	Header string `json:"header" yaml:"header" toml:"header"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" toml:"format"`
}

// CompanyProfile describes the budget grid of one company variant.
type CompanyProfile struct {
	Code    string   `json:"code" yaml:"code" toml:"code"`
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Columns []Column `json:"columns" yaml:"columns" toml:"columns"`
}

// Fields returns the column field names in display order.
func (c CompanyProfile) Fields() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Field
	}
	return out
}

// Headers returns the column headers resolved for a budget year.
func (c CompanyProfile) Headers(budgetYear int) []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = ResolveHeader(col.Header, budgetYear)
	}
	return out
}

// ResolveHeader replaces the year placeholders of a header template.
func ResolveHeader(header string, budgetYear int) string {
	if header == "" {
		return header
	}
	r := strings.NewReplacer(
		"{Y-1}", strconv.Itoa(budgetYear-1),
		"{Y+1}", strconv.Itoa(budgetYear+1),
		"{Y}", strconv.Itoa(budgetYear),
	)
	return r.Replace(header)
}

var planColumns = []Column{
	{Field: FieldTotHC, Header: "HC Budget {Y}", Format: FormatCount},
	{Field: FieldTotPE, Header: "PE Budget {Y}", Format: FormatMoney},
	{Field: FieldBudgetCurrHC, Header: "HC B0 {Y-1}", Format: FormatCount},
	{Field: FieldBudgetCurrPE, Header: "PE B0 {Y-1}", Format: FormatMoney},
	{Field: FieldLECurrHC, Header: "HC LE {Y-1}", Format: FormatCount},
	{Field: FieldLECurrPE, Header: "PE LE {Y-1}", Format: FormatMoney},
	{Field: FieldDiffHCB0, Header: "Diff HC vs B0", Format: FormatCount},
	{Field: FieldDiffPEB0, Header: "Diff PE vs B0", Format: FormatMoney},
	{Field: FieldDiffPercentB0, Header: "% vs B0", Format: FormatPercent},
	{Field: FieldDiffHCLE, Header: "Diff HC vs LE", Format: FormatCount},
	{Field: FieldDiffPELE, Header: "Diff PE vs LE", Format: FormatMoney},
	{Field: FieldDiffPercentLE, Header: "% vs LE", Format: FormatPercent},
}

// BuiltinCompanies returns the BJC and BIG C grid layouts keyed by code.
func BuiltinCompanies() map[string]CompanyProfile {
	bigc := make([]Column, 0, len(planColumns)+3)
	bigc = append(bigc, planColumns[:2]...)
	bigc = append(bigc,
		Column{Field: "PE_SALARY", Header: "Salary {Y}", Format: FormatMoney},
		Column{Field: "PE_BONUS", Header: "Bonus {Y}", Format: FormatMoney},
		Column{Field: "PE_WELFARE", Header: "Welfare {Y}", Format: FormatMoney},
	)
	bigc = append(bigc, planColumns[2:]...)

	return map[string]CompanyProfile{
		"BJC": {
			Code:    "BJC",
			Name:    "Berli Jucker",
			Columns: append([]Column(nil), planColumns...),
		},
		"BIGC": {
			Code:    "BIGC",
			Name:    "BIG C Supercenter",
			Columns: bigc,
		},
	}
}
