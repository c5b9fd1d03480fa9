package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile    string
	Input         string
	Company       string
	BudgetYear    int
	ReportName    string
	ReportType    []string
	Dir           string
	Expand        []string
	ExpandAll     bool
	ShowKeys      bool
	SortSubgroups bool
	NumericFields []string
	Locale        string
	AuditLog      string
	LogGroup      string
	AWSProfile    string
	AWSRegion     string

	// SetFlags holds the names of the flags given on the command line.
	// Values of flags not in it may be replaced by the config file.
	SetFlags map[string]bool
}

// IsSet reports whether a flag was given explicitly.
func (a *CLIArgs) IsSet(flag string) bool {
	return a.SetFlags[flag]
}

// Flag names shared by the CLI and the config merge.
const (
	FlagInput         = "input"
	FlagCompany       = "company"
	FlagBudgetYear    = "budget-year"
	FlagReportName    = "report-name"
	FlagReportType    = "report-type"
	FlagDir           = "dir"
	FlagExpand        = "expand"
	FlagExpandAll     = "expand-all"
	FlagShowKeys      = "show-keys"
	FlagSortSubgroups = "sort-subgroups"
	FlagNumericFields = "numeric-fields"
	FlagLocale        = "locale"
	FlagAuditLog      = "audit-log"
	FlagLogGroup      = "log-group"
	FlagAWSProfile    = "aws-profile"
	FlagAWSRegion     = "aws-region"
)
