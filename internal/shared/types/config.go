package types

import "github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Input              string                  `json:"input" yaml:"input" toml:"input"`
	Company            string                  `json:"company" yaml:"company" toml:"company"`
	BudgetYear         int                     `json:"budget_year" yaml:"budget_year" toml:"budget_year"`
	ReportName         string                  `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType         []string                `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir                string                  `json:"dir" yaml:"dir" toml:"dir"`
	Expand             []string                `json:"expand" yaml:"expand" toml:"expand"`
	ExpandAll          bool                    `json:"expand_all" yaml:"expand_all" toml:"expand_all"`
	SortSubgroups      bool                    `json:"sort_subgroups" yaml:"sort_subgroups" toml:"sort_subgroups"`
	NumericFields      []string                `json:"numeric_fields" yaml:"numeric_fields" toml:"numeric_fields"`
	Locale             string                  `json:"locale" yaml:"locale" toml:"locale"`
	AuditLog           string                  `json:"audit_log" yaml:"audit_log" toml:"audit_log"`
	CloudWatchLogGroup string                  `json:"cloudwatch_log_group" yaml:"cloudwatch_log_group" toml:"cloudwatch_log_group"`
	AWSProfile         string                  `json:"aws_profile" yaml:"aws_profile" toml:"aws_profile"`
	AWSRegion          string                  `json:"aws_region" yaml:"aws_region" toml:"aws_region"`
	Measures           entity.Measures         `json:"measures" yaml:"measures" toml:"measures"`
	Companies          []entity.CompanyProfile `json:"companies" yaml:"companies" toml:"companies"`
}
