package entity

import "time"

// AuditEntry records one planning run for the audit trail.
type AuditEntry struct {
	Time       time.Time          `json:"time"`
	Actor      string             `json:"actor"`
	Company    string             `json:"company"`
	BudgetYear int                `json:"budget_year"`
	Source     string             `json:"source"`
	InputRows  int                `json:"input_rows"`
	Groups     int                `json:"groups"`
	Exports    []string           `json:"exports,omitempty"`
	Totals     map[string]float64 `json:"totals,omitempty"` // grand totals keyed by GROUP_TOTAL
	Error      string             `json:"error,omitempty"`
}
