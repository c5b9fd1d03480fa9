package repository

import (
	"context"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
)

// AuditTarget selects the sinks of one audit entry. Empty fields are skipped.
type AuditTarget struct {
	File       string
	LogGroup   string
	AWSProfile string
	AWSRegion  string
}

// Enabled reports whether at least one sink is configured.
func (t AuditTarget) Enabled() bool {
	return t.File != "" || t.LogGroup != ""
}

// AuditRepository appends planning runs to an audit trail.
type AuditRepository interface {
	Record(ctx context.Context, target AuditTarget, entry entity.AuditEntry) error
}
