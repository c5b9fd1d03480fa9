package repository

import (
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
)

// Report is everything an exporter needs to write one budget grid.
type Report struct {
	Title      string
	Company    entity.CompanyProfile
	BudgetYear int
	Rows       []entity.OutputRow
	View       hierarchy.ViewState
}

type ExportRepository interface {
	ExportToCSV(report Report, filename, outputDir string) (string, error)
	ExportToJSON(report Report, filename, outputDir string) (string, error)
	ExportToPDF(report Report, filename, outputDir string) (string, error)
	ExportToXLSX(report Report, filename, outputDir string) (string, error)
}
