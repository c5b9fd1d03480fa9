package entity

// Budget metric columns.
const (
	FieldTotHC        = "TOT_HC"
	FieldTotPE        = "TOT_PE"
	FieldBudgetCurrHC = "BUDGET_CURR_HC"
	FieldBudgetCurrPE = "BUDGET_CURR_PE"
	FieldLECurrHC     = "LE_CURR_HC"
	FieldLECurrPE     = "LE_CURR_PE"

	FieldDiffHCB0      = "DIFF_HC_B0"
	FieldDiffPEB0      = "DIFF_PE_B0"
	FieldDiffHCLE      = "DIFF_HC_LE"
	FieldDiffPELE      = "DIFF_PE_LE"
	FieldDiffPercentB0 = "DIFF_PERCENT_B0"
	FieldDiffPercentLE = "DIFF_PERCENT_LE"
)

// DifferenceRule sets Target = Minuend - Subtrahend.
type DifferenceRule struct {
	Target     string `json:"target" yaml:"target" toml:"target"`
	Minuend    string `json:"minuend" yaml:"minuend" toml:"minuend"`
	Subtrahend string `json:"subtrahend" yaml:"subtrahend" toml:"subtrahend"`
}

// PercentRule sets Target = Numerator / Denominator * 100, or 0 when the
// denominator is 0.
type PercentRule struct {
	Target      string `json:"target" yaml:"target" toml:"target"`
	Numerator   string `json:"numerator" yaml:"numerator" toml:"numerator"`
	Denominator string `json:"denominator" yaml:"denominator" toml:"denominator"`
}

// Measures holds the derived-field formulas applied to summary rows.
// Differences are evaluated before percentages so a percentage may refer to
// a difference.
type Measures struct {
	Differences []DifferenceRule `json:"differences" yaml:"differences" toml:"differences"`
	Percents    []PercentRule    `json:"percents" yaml:"percents" toml:"percents"`
}

// IsZero reports whether no formula is configured.
func (m Measures) IsZero() bool {
	return len(m.Differences) == 0 && len(m.Percents) == 0
}

// Targets returns every derived column name.
func (m Measures) Targets() []string {
	out := make([]string, 0, len(m.Differences)+len(m.Percents))
	for _, d := range m.Differences {
		out = append(out, d.Target)
	}
	for _, p := range m.Percents {
		out = append(out, p.Target)
	}
	return out
}

// DefaultMeasures compares the planned budget (TOT) against the current
// year's budget (B0) and latest estimate (LE).
func DefaultMeasures() Measures {
	return Measures{
		Differences: []DifferenceRule{
			{Target: FieldDiffHCB0, Minuend: FieldTotHC, Subtrahend: FieldBudgetCurrHC},
			{Target: FieldDiffPEB0, Minuend: FieldTotPE, Subtrahend: FieldBudgetCurrPE},
			{Target: FieldDiffHCLE, Minuend: FieldTotHC, Subtrahend: FieldLECurrHC},
			{Target: FieldDiffPELE, Minuend: FieldTotPE, Subtrahend: FieldLECurrPE},
		},
		Percents: []PercentRule{
			{Target: FieldDiffPercentB0, Numerator: FieldDiffPEB0, Denominator: FieldBudgetCurrPE},
			{Target: FieldDiffPercentLE, Numerator: FieldDiffPELE, Denominator: FieldLECurrPE},
		},
	}
}
