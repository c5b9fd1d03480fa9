package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/diillson/pe-budget-dashboard-go/pkg/console"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implements ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository creates a new ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// metadataHeaders trail the company columns in the CSV export.
var metadataHeaders = []string{"_key", "_parentKey", "_isGroup", "_isGrandTotal", "_expanded", "_childCount"}

func (r *ExportRepositoryImpl) ExportToCSV(report repository.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	headers := []string{"Level", "Label"}
	headers = append(headers, entity.GroupingFields...)
	headers = append(headers, report.Company.Headers(report.BudgetYear)...)
	headers = append(headers, metadataHeaders...)
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{levelName(row), cleanRichTags(row.Label)}
		for _, f := range entity.GroupingFields {
			record = append(record, cleanRichTags(row.Fields.String(f)))
		}
		for _, col := range report.Company.Columns {
			record = append(record, rawValue(row, col.Field))
		}
		record = append(record,
			row.Key,
			row.ParentKey,
			strconv.FormatBool(row.IsGroup),
			strconv.FormatBool(row.IsGrandTotal),
			strconv.FormatBool(isOpen(row, report.View)),
			strconv.Itoa(row.ChildCount),
		)
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row %s: %w", row.Key, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// jsonReport is the document written by ExportToJSON.
type jsonReport struct {
	Title       string             `json:"title"`
	Company     string             `json:"company"`
	CompanyName string             `json:"company_name"`
	BudgetYear  int                `json:"budget_year"`
	GeneratedAt time.Time          `json:"generated_at"`
	Columns     []jsonColumn       `json:"columns"`
	Expanded    []string           `json:"expanded"`
	Rows        []entity.OutputRow `json:"rows"`
}

type jsonColumn struct {
	Field  string `json:"field"`
	Header string `json:"header"`
	Format string `json:"format,omitempty"`
}

func (r *ExportRepositoryImpl) ExportToJSON(report repository.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	doc := jsonReport{
		Title:       report.Title,
		Company:     report.Company.Code,
		CompanyName: report.Company.Name,
		BudgetYear:  report.BudgetYear,
		GeneratedAt: time.Now().UTC(),
		Expanded:    report.View.Keys(),
		Rows:        withViewState(report.Rows, report.View),
	}
	for _, col := range report.Company.Columns {
		doc.Columns = append(doc.Columns, jsonColumn{
			Field:  col.Field,
			Header: entity.ResolveHeader(col.Header, report.BudgetYear),
			Format: col.Format,
		})
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// PDF fill colors per hierarchy level.
var pdfLevelFill = map[int][3]int{
	entity.LevelGrandTotal:   {252, 228, 214},
	entity.LevelGroupType:    {217, 225, 242},
	entity.LevelGroupingHead: {237, 241, 249},
	entity.LevelGrouping:     {248, 248, 248},
	entity.LevelDetail:       {255, 255, 255},
}

func (r *ExportRepositoryImpl) ExportToPDF(report repository.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	headers := report.Company.Headers(report.BudgetYear)
	labelWidth := 70.0
	colWidth := usable - labelWidth
	if len(headers) > 0 {
		colWidth = (usable - labelWidth) / float64(len(headers))
	}

	drawTableHeader := func() {
		pdf.SetFont("Arial", "B", 7)
		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.CellFormat(labelWidth, 7, tr("Group"), "1", 0, "L", true, 0, "")
		for _, h := range headers {
			pdf.CellFormat(colWidth, 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	title := report.Title
	if title == "" {
		title = fmt.Sprintf("%s PE Budget %d", report.Company.Name, report.BudgetYear)
	}

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
			pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 12, tr("  "+cleanRichTags(title)), "", 1, "L", true, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.SetFillColor(240, 240, 240)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Company: %s (%s) | Budget year: %d", report.Company.Name, report.Company.Code, report.BudgetYear)), "", 1, "L", true, 0, "")
			pdf.Ln(4)
		}
		drawTableHeader()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by PE Budget Dashboard | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	for _, row := range report.Rows {
		fill := pdfLevelFill[row.Level]
		pdf.SetFillColor(fill[0], fill[1], fill[2])
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		if row.IsGroup || row.IsGrandTotal {
			pdf.SetFont("Arial", "B", 7)
		} else {
			pdf.SetFont("Arial", "", 7)
		}

		label := indent(row) + cleanRichTags(row.Label)
		for pdf.GetStringWidth(label) > labelWidth-2 {
			runes := []rune(label)
			if len(runes) <= 4 {
				break
			}
			label = string(runes[:len(runes)-4]) + "..."
		}
		pdf.CellFormat(labelWidth, 6, tr(label), "1", 0, "L", true, 0, "")
		for _, col := range report.Company.Columns {
			pdf.CellFormat(colWidth, 6, tr(formattedValue(row, col)), "1", 0, "R", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// pterm rich tags and ANSI color/style sequences.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags removes pterm formatting tags and ANSI sequences.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}

func levelName(row entity.OutputRow) string {
	if row.IsGrandTotal {
		return "total"
	}
	return strconv.Itoa(row.Level)
}

func indent(row entity.OutputRow) string {
	if row.Level <= 0 {
		return ""
	}
	return strings.Repeat("   ", row.Level)
}

// isOpen reports the live accordion state of a group row.
func isOpen(row entity.OutputRow, view hierarchy.ViewState) bool {
	return row.IsGroup && view.IsExpanded(row.Key)
}

// withViewState copies rows with Expanded set from the view state.
func withViewState(rows []entity.OutputRow, view hierarchy.ViewState) []entity.OutputRow {
	out := make([]entity.OutputRow, len(rows))
	for i, row := range rows {
		row.Expanded = isOpen(row, view)
		out[i] = row
	}
	return out
}

// rawValue renders a metric cell for machine-readable output. Absent cells
// are empty.
func rawValue(row entity.OutputRow, field string) string {
	v, ok := row.Fields[field]
	if !ok || v == nil {
		return ""
	}
	if !hierarchy.IsNumeric(v) {
		return cleanRichTags(row.Fields.String(field))
	}
	return strconv.FormatFloat(hierarchy.ToFloat(v), 'f', -1, 64)
}

// formattedValue renders a metric cell for people.
func formattedValue(row entity.OutputRow, col entity.Column) string {
	return cleanRichTags(console.FormatCell(row.Fields[col.Field], col.Format))
}
