package console

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Console implements types.ConsoleInterface on pterm.
type Console struct{}

// NewConsole creates a new Console.
func NewConsole() *Console {
	return &Console{}
}

// Print prints to the console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf prints a formatted string to the console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println prints to the console with a newline.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// LogInfo logs an informational message.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning logs a warning.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError logs an error.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess logs a success message.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status starts a spinner with the given message.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Colors shared by the CLI.
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update changes the spinner text.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop stops the spinner.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal starts a progress bar of total steps.
func (c *Console) ProgressWithTotal(total int, title string) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithShowElapsedTime(true).
		WithShowCount(true).
		WithRemoveWhenDone(false).
		Start()
	return &progressHandle{bar: bar}
}

// Increment advances the progress bar.
func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop stops the progress bar.
func (h *progressHandle) Stop() {
	if h.bar != nil {
		h.bar.Stop()
	}
}

// Table implements types.TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable creates an empty table.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn appends a column.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renders the table to a string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayTotalBars draws one bar per grand total, scaled to the largest
// amount, with the change against the reference amount.
func (c *Console) DisplayTotalBars(title string, bars []types.TotalBar) {
	fmt.Println("\n" + RenderTotalBars(title, bars))
}

// RenderTotalBars renders the grand-total chart panel.
func RenderTotalBars(title string, bars []types.TotalBar) string {
	maxAmount := 0.0
	for _, b := range bars {
		if math.Abs(b.Amount) > maxAmount {
			maxAmount = math.Abs(b.Amount)
		}
	}

	if maxAmount == 0 {
		return pterm.Warning.Sprint("All grand totals are 0.00")
	}

	tableData := pterm.TableData{
		{"Total", "PE", "", "vs B0"},
	}

	for _, b := range bars {
		barLength := int((math.Abs(b.Amount) / maxAmount) * 40)
		bar := strings.Repeat("█", barLength)

		barColor := pterm.FgBlue.Sprint(bar)
		change := pterm.FgGray.Sprint("N/A")

		if math.Abs(b.Reference) >= 0.01 {
			changePercent := ((b.Amount - b.Reference) / b.Reference) * 100.0

			switch {
			case math.Abs(changePercent) < 0.01:
				change = pterm.FgYellow.Sprint("0%")
				barColor = pterm.FgYellow.Sprint(bar)
			case changePercent > 999:
				change = pterm.FgRed.Sprint(">+999%")
				barColor = pterm.FgRed.Sprint(bar)
			case changePercent < -999:
				change = pterm.FgGreen.Sprint(">-999%")
				barColor = pterm.FgGreen.Sprint(bar)
			case changePercent > 0:
				change = pterm.FgRed.Sprintf("+%.2f%%", changePercent)
				barColor = pterm.FgRed.Sprint(bar)
			default:
				change = pterm.FgGreen.Sprintf("%.2f%%", changePercent)
				barColor = pterm.FgGreen.Sprint(bar)
			}
		}

		tableData = append(tableData, []string{
			b.Label,
			FormatAmount(b.Amount),
			barColor,
			change,
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	return pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)
}

// FormatAmount formats a number with thousands separators and two decimals.
func FormatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	b.WriteString(frac)

	if v < 0 && s != "0.00" {
		return "-" + b.String()
	}
	return b.String()
}

// FormatCell renders a grid cell in a column format. nil is empty and
// non-numeric values are printed as they are.
func FormatCell(v interface{}, format string) string {
	if v == nil {
		return ""
	}
	if !hierarchy.IsNumeric(v) {
		return fmt.Sprint(v)
	}
	n := hierarchy.ToFloat(v)
	switch format {
	case entity.FormatPercent:
		return fmt.Sprintf("%.2f%%", n)
	case entity.FormatCount:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return FormatAmount(n)
	}
}
