package cli

import (
	"context"
	"path/filepath"

	"github.com/diillson/pe-budget-dashboard-go/internal/application/usecase"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/diillson/pe-budget-dashboard-go/pkg/version"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd         *cobra.Command
	planningUseCase *usecase.PlanningUseCase
	version         string
}

// mergeableFlags are the flags a config file may supply.
var mergeableFlags = []string{
	types.FlagInput,
	types.FlagCompany,
	types.FlagBudgetYear,
	types.FlagReportName,
	types.FlagReportType,
	types.FlagDir,
	types.FlagExpand,
	types.FlagExpandAll,
	types.FlagShowKeys,
	types.FlagSortSubgroups,
	types.FlagNumericFields,
	types.FlagLocale,
	types.FlagAuditLog,
	types.FlagLogGroup,
	types.FlagAWSProfile,
	types.FlagAWSRegion,
}

// NewCLIApp creates a new CLI application.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:   "pe-budget",
		Short: "PE Budget planning dashboard CLI",
		Long: `Aggregates flat personnel-expense budget rows into the GROUP_TYPE > GROUPING_HEAD > GROUPING
hierarchy with subtotals and grand totals, renders the accordion grid and exports it.`,
		Version:       formattedVersion,
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "PE Budget Dashboard version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringP(types.FlagInput, "i", "", "Budget rows: a .json, .csv, .xlsx or .yaml file, or s3://bucket/key")
	flags.StringP(types.FlagCompany, "c", "", "Company profile: BJC, BIGC or one defined in the config file (default BJC)")
	flags.IntP(types.FlagBudgetYear, "Y", 0, "Budget year used in column headers (default: next calendar year)")
	flags.StringP(types.FlagReportName, "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP(types.FlagReportType, "y", []string{"csv"}, "Specify report types: csv, json, pdf, xlsx")
	flags.StringP(types.FlagDir, "d", "", "Directory to save the report files (default: current directory)")
	flags.StringArrayP(types.FlagExpand, "e", nil, "Group key to expand, repeatable (see --show-keys)")
	flags.Bool(types.FlagExpandAll, false, "Expand every group")
	flags.Bool(types.FlagShowKeys, false, "Show the node key of every grid row")
	flags.Bool(types.FlagSortSubgroups, false, "Sort GROUPING_HEAD and GROUPING alphabetically instead of input order")
	flags.StringSlice(types.FlagNumericFields, nil, "Columns to sum (default: numeric columns of the first row)")
	flags.String(types.FlagLocale, "", "Collation locale for GROUP_TYPE ordering, e.g. en, th (default en)")
	flags.String(types.FlagAuditLog, "", "Append a JSON-lines audit entry per run to this file")
	flags.String(types.FlagLogGroup, "", "Send audit entries to this CloudWatch Logs group")
	flags.StringP(types.FlagAWSProfile, "p", "", "AWS profile for s3:// input and CloudWatch audit")
	flags.StringP(types.FlagAWSRegion, "r", "", "AWS region for s3:// input and CloudWatch audit")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	input, _ := flags.GetString(types.FlagInput)
	company, _ := flags.GetString(types.FlagCompany)
	budgetYear, _ := flags.GetInt(types.FlagBudgetYear)
	reportName, _ := flags.GetString(types.FlagReportName)
	reportType, _ := flags.GetStringSlice(types.FlagReportType)
	dir, _ := flags.GetString(types.FlagDir)
	expand, _ := flags.GetStringArray(types.FlagExpand)
	expandAll, _ := flags.GetBool(types.FlagExpandAll)
	showKeys, _ := flags.GetBool(types.FlagShowKeys)
	sortSubgroups, _ := flags.GetBool(types.FlagSortSubgroups)
	numericFields, _ := flags.GetStringSlice(types.FlagNumericFields)
	locale, _ := flags.GetString(types.FlagLocale)
	auditLog, _ := flags.GetString(types.FlagAuditLog)
	logGroup, _ := flags.GetString(types.FlagLogGroup)
	awsProfile, _ := flags.GetString(types.FlagAWSProfile)
	awsRegion, _ := flags.GetString(types.FlagAWSRegion)

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	setFlags := make(map[string]bool)
	for _, name := range mergeableFlags {
		if flags.Changed(name) {
			setFlags[name] = true
		}
	}

	args := &types.CLIArgs{
		ConfigFile:    configFile,
		Input:         input,
		Company:       company,
		BudgetYear:    budgetYear,
		ReportName:    reportName,
		ReportType:    reportType,
		Dir:           dir,
		Expand:        expand,
		ExpandAll:     expandAll,
		ShowKeys:      showKeys,
		SortSubgroups: sortSubgroups,
		NumericFields: numericFields,
		Locale:        locale,
		AuditLog:      auditLog,
		LogGroup:      logGroup,
		AWSProfile:    awsProfile,
		AWSRegion:     awsRegion,
		SetFlags:      setFlags,
	}

	return args, nil
}

// runCommand is the entry point of the root command.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.planningUseCase.RunPlanning(ctx, cliArgs)
}

// SetPlanningUseCase sets the planning use case for the CLI app.
func (app *CLIApp) SetPlanningUseCase(useCase *usecase.PlanningUseCase) {
	app.planningUseCase = useCase
}
