package usecase

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/diillson/pe-budget-dashboard-go/pkg/console"
	"github.com/pterm/pterm"
)

// PlanningUseCase runs one budget planning view: load, aggregate, render,
// export and audit.
type PlanningUseCase struct {
	sourceRepo repository.SourceRepository
	exportRepo repository.ExportRepository
	configRepo repository.ConfigRepository
	auditRepo  repository.AuditRepository
	awsRepo    repository.AWSRepository
	console    types.ConsoleInterface
	now        func() time.Time
}

// NewPlanningUseCase creates a new planning use case.
func NewPlanningUseCase(
	sourceRepo repository.SourceRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	auditRepo repository.AuditRepository,
	awsRepo repository.AWSRepository,
	console types.ConsoleInterface,
) *PlanningUseCase {
	return &PlanningUseCase{
		sourceRepo: sourceRepo,
		exportRepo: exportRepo,
		configRepo: configRepo,
		auditRepo:  auditRepo,
		awsRepo:    awsRepo,
		console:    console,
		now:        time.Now,
	}
}

// planRun is the resolved input of one run.
type planRun struct {
	args       types.CLIArgs
	company    entity.CompanyProfile
	budgetYear int
	measures   entity.Measures
}

func (p planRun) usesAWS() bool {
	return strings.HasPrefix(p.args.Input, "s3://") || p.args.LogGroup != ""
}

func (p planRun) auditTarget() repository.AuditTarget {
	return repository.AuditTarget{
		File:       p.args.AuditLog,
		LogGroup:   p.args.LogGroup,
		AWSProfile: p.args.AWSProfile,
		AWSRegion:  p.args.AWSRegion,
	}
}

// numericColumns are the columns read as numbers from text inputs: the
// declared numeric fields, or the company's metric columns plus every
// formula operand.
func (p planRun) numericColumns() []string {
	if len(p.args.NumericFields) > 0 {
		return p.args.NumericFields
	}

	measures := p.measures
	if measures.IsZero() {
		measures = entity.DefaultMeasures()
	}

	seen := make(map[string]bool)
	var out []string
	add := func(fields ...string) {
		for _, f := range fields {
			if f != "" && !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	add(p.company.Fields()...)
	for _, d := range measures.Differences {
		add(d.Minuend, d.Subtrahend)
	}
	for _, r := range measures.Percents {
		add(r.Numerator, r.Denominator)
	}
	return out
}

// PlanResult summarizes a run.
type PlanResult struct {
	Company    entity.CompanyProfile
	BudgetYear int
	InputRows  int
	Rows       []entity.OutputRow
	View       hierarchy.ViewState
	Exports    []string
}

// RunPlanning is the entry point of the CLI.
func (uc *PlanningUseCase) RunPlanning(ctx context.Context, args *types.CLIArgs) error {
	_, err := uc.Plan(ctx, args)
	return err
}

// Plan runs the planning view and returns what it produced.
func (uc *PlanningUseCase) Plan(ctx context.Context, args *types.CLIArgs) (*PlanResult, error) {
	run, err := uc.resolve(args)
	if err != nil {
		return nil, err
	}

	if run.usesAWS() && run.args.AWSProfile != "" {
		uc.checkProfile(run.args.AWSProfile)
	}

	entry := entity.AuditEntry{
		Time:       uc.now(),
		Company:    run.company.Code,
		BudgetYear: run.budgetYear,
		Source:     run.args.Input,
	}
	fail := func(err error) (*PlanResult, error) {
		entry.Error = err.Error()
		uc.recordAudit(ctx, run, entry)
		return nil, err
	}

	status := uc.console.Status(fmt.Sprintf("Loading budget rows from %s...", run.args.Input))
	rows, err := uc.sourceRepo.LoadRows(ctx, repository.SourceRequest{
		URI:           run.args.Input,
		AWSProfile:    run.args.AWSProfile,
		AWSRegion:     run.args.AWSRegion,
		NumericFields: run.numericColumns(),
	})
	if err != nil {
		status.Stop()
		return fail(fmt.Errorf("error loading budget rows: %w", err))
	}
	if len(rows) == 0 {
		status.Stop()
		return fail(fmt.Errorf("%w: %s", types.ErrEmptyDataset, run.args.Input))
	}
	entry.InputRows = len(rows)

	status.Update("Aggregating budget hierarchy...")
	out, err := hierarchy.Aggregate(rows, hierarchy.Options{
		NumericFields: run.args.NumericFields,
		SortSubgroups: run.args.SortSubgroups,
		Locale:        run.args.Locale,
		Measures:      run.measures,
	})
	status.Stop()
	if err != nil {
		return fail(fmt.Errorf("error aggregating budget rows: %w", err))
	}

	view := uc.buildView(out, run.args)
	result := &PlanResult{
		Company:    run.company,
		BudgetYear: run.budgetYear,
		InputRows:  len(rows),
		Rows:       out,
		View:       view,
	}

	visible := hierarchy.Visible(out, view)
	uc.console.Print(uc.renderGrid(run, visible, view))

	groups, totals := summarize(out)
	entry.Groups = groups
	entry.Totals = totals
	uc.console.LogInfo("%d input rows, %d groups, showing %d of %d grid rows", len(rows), groups, len(visible), len(out))

	if bars := totalBars(out); len(bars) > 0 {
		uc.console.DisplayTotalBars(fmt.Sprintf("%s PE Budget %d Grand Totals", run.company.Code, run.budgetYear), bars)
	}

	report := repository.Report{
		Title:      fmt.Sprintf("%s PE Budget %d", run.company.Name, run.budgetYear),
		Company:    run.company,
		BudgetYear: run.budgetYear,
		Rows:       out,
		View:       view,
	}
	result.Exports = uc.exportReports(report, run.args)
	entry.Exports = result.Exports

	uc.recordAudit(ctx, run, entry)
	return result, nil
}

// resolve merges the config file into args and picks company and year.
func (uc *PlanningUseCase) resolve(args *types.CLIArgs) (planRun, error) {
	merged := *args
	var cfg *types.Config
	if args.ConfigFile != "" {
		loaded, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return planRun{}, fmt.Errorf("error loading config file: %w", err)
		}
		cfg = loaded
		merged = MergeConfig(*args, cfg)
	}

	if strings.TrimSpace(merged.Input) == "" {
		return planRun{}, types.ErrNoInputSource
	}

	var custom []entity.CompanyProfile
	var measures entity.Measures
	if cfg != nil {
		custom = cfg.Companies
		measures = cfg.Measures
	}

	company, err := ResolveCompany(merged.Company, custom)
	if err != nil {
		return planRun{}, err
	}

	budgetYear := merged.BudgetYear
	if budgetYear == 0 {
		budgetYear = uc.now().Year() + 1
	}

	return planRun{
		args:       merged,
		company:    company,
		budgetYear: budgetYear,
		measures:   measures,
	}, nil
}

func (uc *PlanningUseCase) checkProfile(profile string) {
	for _, p := range uc.awsRepo.GetAWSProfiles() {
		if p == profile {
			return
		}
	}
	uc.console.LogWarning("Profile '%s' not found in AWS configuration", profile)
}

// buildView opens level 0 (or everything) and then the requested nodes.
func (uc *PlanningUseCase) buildView(rows []entity.OutputRow, args types.CLIArgs) hierarchy.ViewState {
	view := hierarchy.DefaultViewState(rows)
	if args.ExpandAll {
		view = hierarchy.ExpandAll(rows)
	}
	if len(args.Expand) == 0 {
		return view
	}

	groupKeys := make(map[string]bool)
	for _, r := range rows {
		if r.IsGroup {
			groupKeys[r.Key] = true
		}
	}
	for _, k := range args.Expand {
		if !groupKeys[k] {
			uc.console.LogWarning("Unknown group key '%s' in --expand (use --show-keys to list keys)", k)
		}
	}
	return view.Expand(args.Expand...)
}

// Label colors per hierarchy level.
var levelStyles = map[int]*pterm.Style{
	entity.LevelGrandTotal:   pterm.NewStyle(pterm.FgYellow, pterm.Bold),
	entity.LevelGroupType:    pterm.NewStyle(pterm.FgCyan, pterm.Bold),
	entity.LevelGroupingHead: pterm.NewStyle(pterm.FgLightBlue, pterm.Bold),
	entity.LevelGrouping:     pterm.NewStyle(pterm.FgLightWhite),
	entity.LevelDetail:       pterm.NewStyle(pterm.FgGray),
}

func (uc *PlanningUseCase) renderGrid(run planRun, visible []entity.OutputRow, view hierarchy.ViewState) string {
	table := uc.console.CreateTable()
	table.AddColumn(fmt.Sprintf("%s (%d)", run.company.Name, run.budgetYear))
	if run.args.ShowKeys {
		table.AddColumn("Key")
	}
	for _, h := range run.company.Headers(run.budgetYear) {
		table.AddColumn(h)
	}

	for _, row := range visible {
		cells := []interface{}{gridLabel(row, view)}
		if run.args.ShowKeys {
			cells = append(cells, row.Key)
		}
		for _, col := range run.company.Columns {
			cells = append(cells, console.FormatCell(row.Fields[col.Field], col.Format))
		}
		table.AddRow(cells...)
	}
	return table.Render()
}

func gridLabel(row entity.OutputRow, view hierarchy.ViewState) string {
	label := row.Label
	switch {
	case row.IsGroup && view.IsExpanded(row.Key):
		label = "▼ " + label
	case row.IsGroup:
		label = "▶ " + label
	case !row.IsGrandTotal:
		label = "• " + label
	}
	if row.Level > 0 {
		label = strings.Repeat("  ", row.Level) + label
	}
	if style, ok := levelStyles[row.Level]; ok {
		return style.Sprint(label)
	}
	return label
}

// summarize counts level-0 groups and collects the PE grand totals.
func summarize(rows []entity.OutputRow) (int, map[string]float64) {
	groups := 0
	totals := make(map[string]float64)
	for _, r := range rows {
		switch {
		case r.Level == entity.LevelGroupType:
			groups++
		case r.IsGrandTotal:
			totals[r.Key] = r.Number(entity.FieldTotPE)
		}
	}
	return groups, totals
}

func totalBars(rows []entity.OutputRow) []types.TotalBar {
	var bars []types.TotalBar
	for _, r := range rows {
		if !r.IsGrandTotal {
			continue
		}
		bars = append(bars, types.TotalBar{
			Label:     r.Label,
			Amount:    r.Number(entity.FieldTotPE),
			Reference: r.Number(entity.FieldBudgetCurrPE),
		})
	}
	return bars
}

type exportFunc func(report repository.Report, filename, outputDir string) (string, error)

// exportReports writes every requested report type. A failing format is
// logged and the others still run.
func (uc *PlanningUseCase) exportReports(report repository.Report, args types.CLIArgs) []string {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return nil
	}

	exporters := map[string]exportFunc{
		"csv":  uc.exportRepo.ExportToCSV,
		"json": uc.exportRepo.ExportToJSON,
		"pdf":  uc.exportRepo.ExportToPDF,
		"xlsx": uc.exportRepo.ExportToXLSX,
	}

	type outcome struct {
		reportType string
		path       string
		err        error
	}
	var outcomes []outcome

	progress := uc.console.ProgressWithTotal(len(args.ReportType), "Exporting reports")
	for _, reportType := range args.ReportType {
		reportType = strings.ToLower(strings.TrimSpace(reportType))
		export, ok := exporters[reportType]
		if !ok {
			outcomes = append(outcomes, outcome{reportType: reportType, err: fmt.Errorf("%w: %s", types.ErrUnknownReportType, reportType)})
			progress.Increment()
			continue
		}
		path, err := export(report, args.ReportName, args.Dir)
		outcomes = append(outcomes, outcome{reportType: reportType, path: path, err: err})
		progress.Increment()
	}
	progress.Stop()

	var paths []string
	for _, o := range outcomes {
		if o.err != nil {
			uc.console.LogError("Failed to export to %s: %s", strings.ToUpper(o.reportType), o.err)
			continue
		}
		uc.console.LogSuccess("Successfully exported to %s: %s", strings.ToUpper(o.reportType), o.path)
		paths = append(paths, o.path)
	}
	return paths
}

// recordAudit appends the run to the audit trail. Failures only warn.
func (uc *PlanningUseCase) recordAudit(ctx context.Context, run planRun, entry entity.AuditEntry) {
	target := run.auditTarget()
	if !target.Enabled() {
		return
	}

	entry.Actor = uc.actor(ctx, run)
	if err := uc.auditRepo.Record(ctx, target, entry); err != nil {
		uc.console.LogWarning("Failed to write audit entry: %s", err)
		return
	}
	uc.console.LogInfo("Audit entry recorded")
}

// actor names who ran the plan: the AWS caller when the run touches AWS,
// otherwise the local user.
func (uc *PlanningUseCase) actor(ctx context.Context, run planRun) string {
	if run.usesAWS() {
		arn, err := uc.awsRepo.CallerIdentity(ctx, run.args.AWSProfile, run.args.AWSRegion)
		if err == nil && arn != "" {
			return arn
		}
		if err != nil {
			uc.console.LogWarning("Could not resolve AWS caller identity: %s", err)
		}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
