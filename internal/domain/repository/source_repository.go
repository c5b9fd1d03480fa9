package repository

import (
	"context"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
)

// SourceRequest names where budget rows come from. AWSProfile and AWSRegion
// are only used for s3:// URIs. NumericFields lists the columns of text
// formats (CSV, XLSX) to read as numbers; other columns stay strings.
type SourceRequest struct {
	URI           string
	AWSProfile    string
	AWSRegion     string
	NumericFields []string
}

// SourceRepository loads flat budget rows from a file path or remote URI.
type SourceRepository interface {
	LoadRows(ctx context.Context, req SourceRequest) ([]entity.FlatRow, error)
}
