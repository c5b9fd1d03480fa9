package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConsole records what the use case prints.
type fakeConsole struct {
	printed  []string
	infos    []string
	warnings []string
	errors   []string
	success  []string
	tables   []*fakeTable
	bars     []types.TotalBar
}

func (c *fakeConsole) Print(a ...interface{})                 { c.printed = append(c.printed, fmt.Sprint(a...)) }
func (c *fakeConsole) Printf(format string, a ...interface{}) { c.printed = append(c.printed, fmt.Sprintf(format, a...)) }
func (c *fakeConsole) Println(a ...interface{})               { c.printed = append(c.printed, fmt.Sprintln(a...)) }
func (c *fakeConsole) LogInfo(format string, a ...interface{}) {
	c.infos = append(c.infos, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {
	c.success = append(c.success, fmt.Sprintf(format, a...))
}
func (c *fakeConsole) Status(message string) types.StatusHandle { return nopHandle{} }
func (c *fakeConsole) ProgressWithTotal(total int, title string) types.ProgressHandle {
	return nopHandle{}
}
func (c *fakeConsole) CreateTable() types.TableInterface {
	t := &fakeTable{}
	c.tables = append(c.tables, t)
	return t
}
func (c *fakeConsole) DisplayTotalBars(title string, bars []types.TotalBar) {
	c.bars = append(c.bars, bars...)
}

type nopHandle struct{}

func (nopHandle) Update(string) {}
func (nopHandle) Increment()    {}
func (nopHandle) Stop()         {}

type fakeTable struct {
	columns []string
	rows    [][]string
}

func (t *fakeTable) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *fakeTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, c := range cells {
		row[i] = fmt.Sprint(c)
	}
	t.rows = append(t.rows, row)
}

func (t *fakeTable) Render() string { return "grid" }

type fakeSource struct {
	rows []entity.FlatRow
	err  error
	req  repository.SourceRequest
}

func (f *fakeSource) LoadRows(ctx context.Context, req repository.SourceRequest) ([]entity.FlatRow, error) {
	f.req = req
	return f.rows, f.err
}

type fakeExport struct {
	calls  []string
	failOn string
	report repository.Report
}

func (f *fakeExport) export(kind string, report repository.Report, filename, outputDir string) (string, error) {
	f.calls = append(f.calls, kind)
	f.report = report
	if kind == f.failOn {
		return "", errors.New("disk full")
	}
	return outputDir + "/" + filename + "." + kind, nil
}

func (f *fakeExport) ExportToCSV(r repository.Report, filename, dir string) (string, error) {
	return f.export("csv", r, filename, dir)
}
func (f *fakeExport) ExportToJSON(r repository.Report, filename, dir string) (string, error) {
	return f.export("json", r, filename, dir)
}
func (f *fakeExport) ExportToPDF(r repository.Report, filename, dir string) (string, error) {
	return f.export("pdf", r, filename, dir)
}
func (f *fakeExport) ExportToXLSX(r repository.Report, filename, dir string) (string, error) {
	return f.export("xlsx", r, filename, dir)
}

type fakeConfig struct {
	cfg *types.Config
	err error
}

func (f fakeConfig) LoadConfigFile(string) (*types.Config, error) { return f.cfg, f.err }

type fakeAudit struct {
	entries []entity.AuditEntry
	targets []repository.AuditTarget
	err     error
}

func (f *fakeAudit) Record(ctx context.Context, target repository.AuditTarget, entry entity.AuditEntry) error {
	f.targets = append(f.targets, target)
	f.entries = append(f.entries, entry)
	return f.err
}

type fakeAWS struct {
	profiles []string
	arn      string
	err      error
	calls    int
}

func (f *fakeAWS) GetAWSProfiles() []string { return f.profiles }
func (f *fakeAWS) CallerIdentity(ctx context.Context, profile, region string) (string, error) {
	f.calls++
	return f.arn, f.err
}

type fixture struct {
	uc      *PlanningUseCase
	console *fakeConsole
	source  *fakeSource
	export  *fakeExport
	audit   *fakeAudit
	aws     *fakeAWS
}

func budgetRows() []entity.FlatRow {
	return []entity.FlatRow{
		{"GROUP_TYPE": "Store Area", "GROUP_TOTAL": "Retail", "GROUPING_HEAD": "North", "GROUPING": "Branch 01", "TOT_HC": 4.0, "TOT_PE": 800.0, "BUDGET_CURR_PE": 1000.0},
		{"GROUP_TYPE": "HO", "GROUP_TOTAL": "HQ", "GROUPING_HEAD": "Finance", "GROUPING": "Accounting", "TOT_HC": 2.0, "TOT_PE": 1200.0, "BUDGET_CURR_PE": 1000.0},
		{"GROUP_TYPE": "HO", "GROUP_TOTAL": "HQ", "GROUPING_HEAD": "Finance", "GROUPING": "Treasury", "TOT_HC": 1.0, "TOT_PE": 300.0, "BUDGET_CURR_PE": 500.0},
	}
}

func newFixture(cfg *types.Config) *fixture {
	fx := &fixture{
		console: &fakeConsole{},
		source:  &fakeSource{rows: budgetRows()},
		export:  &fakeExport{},
		audit:   &fakeAudit{},
		aws:     &fakeAWS{profiles: []string{"default", "finance"}, arn: "arn:aws:iam::123456789012:user/planner"},
	}
	fx.uc = NewPlanningUseCase(fx.source, fx.export, fakeConfig{cfg: cfg}, fx.audit, fx.aws, fx.console)
	fx.uc.now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	return fx
}

func TestPlan_RendersDefaultView(t *testing.T) {
	fx := newFixture(nil)

	result, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json"})
	require.NoError(t, err)

	assert.Equal(t, "BJC", result.Company.Code)
	assert.Equal(t, 2027, result.BudgetYear)
	assert.Equal(t, 3, result.InputRows)
	assert.Equal(t, "rows.json", fx.source.req.URI)
	assert.Equal(t, entity.BuiltinCompanies()["BJC"].Fields(), fx.source.req.NumericFields)

	require.Len(t, fx.console.tables, 1)
	table := fx.console.tables[0]
	assert.Equal(t, "Berli Jucker (2027)", table.columns[0])
	assert.Equal(t, "HC Budget 2027", table.columns[1])

	visible := hierarchy.Visible(result.Rows, result.View)
	require.Len(t, table.rows, len(visible))
	assert.Contains(t, table.rows[0][0], "HO - HQ")
	assert.Equal(t, "1,500.00", table.rows[0][2])

	require.Len(t, fx.console.bars, 2)
	assert.Equal(t, "Grand Total HQ", fx.console.bars[0].Label)
	assert.Equal(t, 1500.0, fx.console.bars[0].Amount)
	assert.Equal(t, 1500.0, fx.console.bars[0].Reference)

	assert.Empty(t, fx.export.calls)
	assert.Empty(t, fx.audit.entries)
	assert.Contains(t, fx.console.infos[0], "3 input rows, 2 groups")
}

func TestPlan_ExpandAndShowKeys(t *testing.T) {
	fx := newFixture(nil)

	result, err := fx.uc.Plan(context.Background(), &types.CLIArgs{
		Input:    "rows.json",
		Expand:   []string{"HO|HQ/Finance", "nope"},
		ShowKeys: true,
	})
	require.NoError(t, err)

	assert.True(t, result.View.IsExpanded("HO|HQ/Finance"))
	table := fx.console.tables[0]
	assert.Equal(t, "Key", table.columns[1])

	var shown []string
	for _, r := range table.rows {
		shown = append(shown, r[1])
	}
	assert.Contains(t, shown, "HO|HQ/Finance/Accounting")
	assert.NotContains(t, shown, "HO|HQ/Finance/Accounting#1")

	require.Len(t, fx.console.warnings, 1)
	assert.Contains(t, fx.console.warnings[0], "'nope'")
}

func TestPlan_ExpandAllShowsDetails(t *testing.T) {
	fx := newFixture(nil)

	result, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json", ExpandAll: true})
	require.NoError(t, err)
	assert.Len(t, fx.console.tables[0].rows, len(result.Rows))
}

func TestPlan_ExportsEveryTypeAndContinuesOnFailure(t *testing.T) {
	fx := newFixture(nil)
	fx.export.failOn = "pdf"

	result, err := fx.uc.Plan(context.Background(), &types.CLIArgs{
		Input:      "rows.json",
		ReportName: "plan",
		ReportType: []string{"csv", "pdf", "XLSX", "docx", "json"},
		Dir:        "/tmp/out",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"csv", "pdf", "xlsx", "json"}, fx.export.calls)
	assert.Equal(t, []string{"/tmp/out/plan.csv", "/tmp/out/plan.xlsx", "/tmp/out/plan.json"}, result.Exports)
	require.Len(t, fx.console.errors, 2)
	assert.Contains(t, fx.console.errors[0], "disk full")
	assert.Contains(t, fx.console.errors[1], types.ErrUnknownReportType.Error())
	assert.Len(t, fx.console.success, 3)

	assert.Equal(t, "Berli Jucker PE Budget 2027", fx.export.report.Title)
	assert.Equal(t, result.Rows, fx.export.report.Rows)
}

func TestPlan_ConfigFileMergesUnderFlags(t *testing.T) {
	cfg := &types.Config{
		Input:      "from-config.json",
		Company:    "bigc",
		BudgetYear: 2030,
		ReportName: "cfg",
		ReportType: []string{"json"},
		AuditLog:   "audit.jsonl",
		Measures: entity.Measures{
			Differences: []entity.DifferenceRule{{Target: "GAP", Minuend: "TOT_PE", Subtrahend: "TOT_HC"}},
		},
	}
	fx := newFixture(cfg)

	args := &types.CLIArgs{
		ConfigFile: "pe-budget.yaml",
		Input:      "from-flag.json",
		BudgetYear: 2028,
		ReportType: []string{"csv"},
		SetFlags:   map[string]bool{types.FlagInput: true, types.FlagBudgetYear: true},
	}
	result, err := fx.uc.Plan(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, "from-flag.json", fx.source.req.URI)
	assert.Equal(t, entity.BuiltinCompanies()["BIGC"].Fields(), fx.source.req.NumericFields)
	assert.Equal(t, 2028, result.BudgetYear)
	assert.Equal(t, "BIGC", result.Company.Code)
	assert.Equal(t, []string{"json"}, fx.export.calls)
	assert.Equal(t, 1497.0, result.Rows[0].Number("GAP"))
	_, hasDefault := result.Rows[0].Fields[entity.FieldDiffPEB0]
	assert.False(t, hasDefault)

	require.Len(t, fx.audit.entries, 1)
	entry := fx.audit.entries[0]
	assert.Equal(t, "audit.jsonl", fx.audit.targets[0].File)
	assert.Equal(t, "BIGC", entry.Company)
	assert.Equal(t, 2028, entry.BudgetYear)
	assert.Equal(t, 3, entry.InputRows)
	assert.Equal(t, 2, entry.Groups)
	assert.Equal(t, 1500.0, entry.Totals["total:HQ"])
	assert.NotEmpty(t, entry.Actor)
	assert.Zero(t, fx.aws.calls)
}

func TestPlan_AuditUsesCallerIdentityForAWSRuns(t *testing.T) {
	fx := newFixture(nil)

	_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{
		Input:      "s3://budgets/2027.json",
		LogGroup:   "/pe-budget/audit",
		AWSProfile: "finance",
		AWSRegion:  "ap-southeast-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "finance", fx.source.req.AWSProfile)
	assert.Equal(t, "ap-southeast-1", fx.source.req.AWSRegion)
	require.Len(t, fx.audit.entries, 1)
	assert.Equal(t, "arn:aws:iam::123456789012:user/planner", fx.audit.entries[0].Actor)
	assert.Equal(t, "/pe-budget/audit", fx.audit.targets[0].LogGroup)
	assert.Empty(t, fx.console.warnings)
}

func TestPlan_DeclaredNumericFieldsReachTheSource(t *testing.T) {
	fx := newFixture(nil)

	_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{
		Input:         "rows.csv",
		NumericFields: []string{"TOT_PE"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TOT_PE"}, fx.source.req.NumericFields)

	fx = newFixture(&types.Config{Measures: entity.Measures{
		Percents: []entity.PercentRule{{Target: "OT_SHARE", Numerator: "PE_OVERTIME", Denominator: "TOT_PE"}},
	}})
	_, err = fx.uc.Plan(context.Background(), &types.CLIArgs{ConfigFile: "pe-budget.toml", Input: "rows.csv"})
	require.NoError(t, err)
	want := append(entity.BuiltinCompanies()["BJC"].Fields(), "PE_OVERTIME")
	assert.Equal(t, want, fx.source.req.NumericFields)
}

func TestPlan_UnknownProfileWarns(t *testing.T) {
	fx := newFixture(nil)

	_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "s3://b/k.json", AWSProfile: "ghost"})
	require.NoError(t, err)
	require.NotEmpty(t, fx.console.warnings)
	assert.Contains(t, fx.console.warnings[0], "'ghost'")
}

func TestPlan_AuditFailureOnlyWarns(t *testing.T) {
	fx := newFixture(nil)
	fx.audit.err = errors.New("permission denied")

	_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json", AuditLog: "/audit.jsonl"})
	require.NoError(t, err)
	require.Len(t, fx.console.warnings, 1)
	assert.Contains(t, fx.console.warnings[0], "permission denied")
}

func TestPlan_Errors(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		fx := newFixture(nil)
		_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{})
		assert.ErrorIs(t, err, types.ErrNoInputSource)
	})

	t.Run("unknown company", func(t *testing.T) {
		fx := newFixture(nil)
		_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json", Company: "ACME"})
		assert.ErrorIs(t, err, types.ErrUnknownCompany)
		assert.ErrorContains(t, err, "BIGC, BJC")
	})

	t.Run("config file", func(t *testing.T) {
		fx := newFixture(nil)
		fx.uc.configRepo = fakeConfig{err: types.ErrUnsupportedFormat}
		_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{ConfigFile: "x.ini"})
		assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
	})

	t.Run("empty dataset is audited", func(t *testing.T) {
		fx := newFixture(nil)
		fx.source.rows = nil
		_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json", AuditLog: "audit.jsonl"})
		assert.ErrorIs(t, err, types.ErrEmptyDataset)
		require.Len(t, fx.audit.entries, 1)
		assert.Contains(t, fx.audit.entries[0].Error, "no rows")
	})

	t.Run("invalid rows", func(t *testing.T) {
		fx := newFixture(nil)
		fx.source.rows = []entity.FlatRow{nil}
		_, err := fx.uc.Plan(context.Background(), &types.CLIArgs{Input: "rows.json"})
		assert.ErrorIs(t, err, hierarchy.ErrInvalidInput)
	})

	t.Run("source failure", func(t *testing.T) {
		fx := newFixture(nil)
		fx.source.err = types.ErrUnsupportedSource
		err := fx.uc.RunPlanning(context.Background(), &types.CLIArgs{Input: "ftp://x"})
		assert.ErrorIs(t, err, types.ErrUnsupportedSource)
	})
}

func TestMergeConfig(t *testing.T) {
	cfg := &types.Config{
		Input:         "cfg.json",
		Company:       "BIGC",
		Dir:           "out",
		Expand:        []string{"HO|HQ"},
		ExpandAll:     true,
		SortSubgroups: true,
		Locale:        "th",
	}

	merged := MergeConfig(types.CLIArgs{Dir: "flag-dir", SetFlags: map[string]bool{types.FlagDir: true}}, cfg)
	assert.Equal(t, "cfg.json", merged.Input)
	assert.Equal(t, "BIGC", merged.Company)
	assert.Equal(t, "flag-dir", merged.Dir)
	assert.Equal(t, []string{"HO|HQ"}, merged.Expand)
	assert.True(t, merged.ExpandAll)
	assert.True(t, merged.SortSubgroups)
	assert.Equal(t, "th", merged.Locale)

	// An explicit false flag beats a true config value.
	merged = MergeConfig(types.CLIArgs{SetFlags: map[string]bool{types.FlagExpandAll: true}}, cfg)
	assert.False(t, merged.ExpandAll)

	assert.Equal(t, types.CLIArgs{Input: "x"}, MergeConfig(types.CLIArgs{Input: "x"}, nil))
}

func TestResolveCompany(t *testing.T) {
	c, err := ResolveCompany("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCompany, c.Code)

	c, err = ResolveCompany(" bigc ", nil)
	require.NoError(t, err)
	assert.Equal(t, "BIG C Supercenter", c.Name)

	custom := []entity.CompanyProfile{{Code: "smart", Columns: []entity.Column{{Field: "TOT_HC", Header: "HC {Y}"}}}}
	c, err = ResolveCompany("SMART", custom)
	require.NoError(t, err)
	assert.Equal(t, "SMART", c.Name)
	assert.Equal(t, []string{"HC 2027"}, c.Headers(2027))

	_, err = ResolveCompany("acme", custom)
	assert.ErrorIs(t, err, types.ErrUnknownCompany)
	assert.True(t, strings.Contains(err.Error(), "SMART"))
}
