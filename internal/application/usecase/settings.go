package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
)

// DefaultCompany is used when neither a flag nor the config names one.
const DefaultCompany = "BJC"

// MergeConfig fills the arguments not given on the command line from the
// config file. Explicit flags always win; empty config values are ignored.
func MergeConfig(args types.CLIArgs, cfg *types.Config) types.CLIArgs {
	if cfg == nil {
		return args
	}

	mergeString := func(flag string, dst *string, v string) {
		if !args.IsSet(flag) && v != "" {
			*dst = v
		}
	}
	mergeSlice := func(flag string, dst *[]string, v []string) {
		if !args.IsSet(flag) && len(v) > 0 {
			*dst = append([]string(nil), v...)
		}
	}
	mergeBool := func(flag string, dst *bool, v bool) {
		if !args.IsSet(flag) && v {
			*dst = v
		}
	}

	mergeString(types.FlagInput, &args.Input, cfg.Input)
	mergeString(types.FlagCompany, &args.Company, cfg.Company)
	mergeString(types.FlagReportName, &args.ReportName, cfg.ReportName)
	mergeString(types.FlagDir, &args.Dir, cfg.Dir)
	mergeString(types.FlagLocale, &args.Locale, cfg.Locale)
	mergeString(types.FlagAuditLog, &args.AuditLog, cfg.AuditLog)
	mergeString(types.FlagLogGroup, &args.LogGroup, cfg.CloudWatchLogGroup)
	mergeString(types.FlagAWSProfile, &args.AWSProfile, cfg.AWSProfile)
	mergeString(types.FlagAWSRegion, &args.AWSRegion, cfg.AWSRegion)

	mergeSlice(types.FlagReportType, &args.ReportType, cfg.ReportType)
	mergeSlice(types.FlagExpand, &args.Expand, cfg.Expand)
	mergeSlice(types.FlagNumericFields, &args.NumericFields, cfg.NumericFields)

	mergeBool(types.FlagExpandAll, &args.ExpandAll, cfg.ExpandAll)
	mergeBool(types.FlagSortSubgroups, &args.SortSubgroups, cfg.SortSubgroups)

	if !args.IsSet(types.FlagBudgetYear) && cfg.BudgetYear != 0 {
		args.BudgetYear = cfg.BudgetYear
	}

	return args
}

// ResolveCompany picks the grid layout of a company code. Config profiles
// replace built-in ones with the same code.
func ResolveCompany(code string, custom []entity.CompanyProfile) (entity.CompanyProfile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCompany
	}

	companies := entity.BuiltinCompanies()
	for _, c := range custom {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Name == "" {
			c.Name = c.Code
		}
		companies[c.Code] = c
	}

	if c, ok := companies[code]; ok {
		return c, nil
	}

	available := make([]string, 0, len(companies))
	for k := range companies {
		available = append(available, k)
	}
	sort.Strings(available)
	return entity.CompanyProfile{}, fmt.Errorf("%w: %s (available: %s)", types.ErrUnknownCompany, code, strings.Join(available, ", "))
}
