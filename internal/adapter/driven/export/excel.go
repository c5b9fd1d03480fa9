package export

import (
	"fmt"
	"path/filepath"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/repository"
	"github.com/xuri/excelize/v2"
)

// Row layout of the budget sheet.
const (
	xlsxTitleRow  = 1
	xlsxInfoRow   = 2
	xlsxHeaderRow = 4
	xlsxFirstRow  = 5
)

var percentNumFmt = `0.00"%"`

// rowKind selects the style of a data row.
type rowKind int

const (
	kindDetail rowKind = iota
	kindGrouping
	kindHead
	kindGroupType
	kindGrandTotal
)

func kindOf(row entity.OutputRow) rowKind {
	switch {
	case row.IsGrandTotal:
		return kindGrandTotal
	case row.Level == entity.LevelGroupType:
		return kindGroupType
	case row.Level == entity.LevelGroupingHead:
		return kindHead
	case row.Level == entity.LevelGrouping:
		return kindGrouping
	default:
		return kindDetail
	}
}

// outlineLevel nests heads under their group, groupings under heads and
// details under groupings, so Excel's outline buttons mirror the accordion.
func outlineLevel(row entity.OutputRow) uint8 {
	if row.IsGrandTotal || row.Level <= entity.LevelGroupType {
		return 0
	}
	return uint8(row.Level)
}

type styleKey struct {
	kind   rowKind
	format string
}

// sheetStyles creates the cell styles of the budget sheet on demand.
type sheetStyles struct {
	f     *excelize.File
	cache map[styleKey]int
}

func (s *sheetStyles) get(kind rowKind, format string) (int, error) {
	key := styleKey{kind: kind, format: format}
	if id, ok := s.cache[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	}
	switch kind {
	case kindGrandTotal:
		style.Font.Bold = true
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1}
	case kindGroupType:
		style.Font.Bold = true
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1}
	case kindHead:
		style.Font.Bold = true
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{"#EDF1F9"}, Pattern: 1}
	case kindGrouping:
		style.Font.Italic = true
	}

	switch format {
	case "label":
		indent := 0
		if kind != kindGrandTotal && kind != kindGroupType {
			indent = int(kindGroupType - kind)
		}
		style.Alignment = &excelize.Alignment{Horizontal: "left", Indent: indent}
	case entity.FormatPercent:
		style.CustomNumFmt = &percentNumFmt
	case entity.FormatCount:
		style.NumFmt = 3 // #,##0
	default:
		style.NumFmt = 4 // #,##0.00
	}

	id, err := s.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	s.cache[key] = id
	return id, nil
}

func (r *ExportRepositoryImpl) ExportToXLSX(report repository.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := report.Company.Code
	if sheetName == "" {
		sheetName = "Budget"
	}
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return "", fmt.Errorf("set sheet name: %w", err)
	}

	headers := append([]string{"Group"}, report.Company.Headers(report.BudgetYear)...)
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return "", fmt.Errorf("resolve last column: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "A", 48); err != nil {
		return "", fmt.Errorf("set label width: %w", err)
	}
	if len(headers) > 1 {
		if err := f.SetColWidth(sheetName, "B", lastCol, 16); err != nil {
			return "", fmt.Errorf("set metric width: %w", err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return "", fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return "", fmt.Errorf("create header style: %w", err)
	}

	title := report.Title
	if title == "" {
		title = fmt.Sprintf("%s PE Budget %d", report.Company.Name, report.BudgetYear)
	}
	if err := f.SetCellStr(sheetName, cellName(1, xlsxTitleRow), cleanRichTags(title)); err != nil {
		return "", err
	}
	if err := f.SetCellStyle(sheetName, cellName(1, xlsxTitleRow), cellName(1, xlsxTitleRow), titleStyle); err != nil {
		return "", err
	}
	info := fmt.Sprintf("Company: %s (%s) | Budget year: %d", report.Company.Name, report.Company.Code, report.BudgetYear)
	if err := f.SetCellValue(sheetName, cellName(1, xlsxInfoRow), info); err != nil {
		return "", err
	}

	for i, h := range headers {
		if err := f.SetCellValue(sheetName, cellName(i+1, xlsxHeaderRow), h); err != nil {
			return "", err
		}
	}
	if err := f.SetCellStyle(sheetName, cellName(1, xlsxHeaderRow), cellName(len(headers), xlsxHeaderRow), headerStyle); err != nil {
		return "", fmt.Errorf("style header: %w", err)
	}

	styles := &sheetStyles{f: f, cache: make(map[styleKey]int)}
	mask := hierarchy.VisibilityMask(report.Rows, report.View)

	for i, row := range report.Rows {
		excelRow := xlsxFirstRow + i
		kind := kindOf(row)

		labelCell := cellName(1, excelRow)
		if err := f.SetCellStr(sheetName, labelCell, cleanRichTags(row.Label)); err != nil {
			return "", err
		}
		labelStyle, err := styles.get(kind, "label")
		if err != nil {
			return "", err
		}
		if err := f.SetCellStyle(sheetName, labelCell, labelCell, labelStyle); err != nil {
			return "", err
		}

		for j, col := range report.Company.Columns {
			cell := cellName(j+2, excelRow)
			if v, ok := row.Fields[col.Field]; ok && v != nil {
				var err error
				if hierarchy.IsNumeric(v) {
					err = f.SetCellFloat(sheetName, cell, hierarchy.ToFloat(v), -1, 64)
				} else {
					err = f.SetCellStr(sheetName, cell, cleanRichTags(row.Fields.String(col.Field)))
				}
				if err != nil {
					return "", err
				}
			}
			styleID, err := styles.get(kind, col.Format)
			if err != nil {
				return "", err
			}
			if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
				return "", err
			}
		}

		if level := outlineLevel(row); level > 0 {
			if err := f.SetRowOutlineLevel(sheetName, excelRow, level); err != nil {
				return "", fmt.Errorf("set outline level of row %d: %w", excelRow, err)
			}
		}
		if !mask[i] {
			if err := f.SetRowVisible(sheetName, excelRow, false); err != nil {
				return "", fmt.Errorf("hide row %d: %w", excelRow, err)
			}
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      xlsxHeaderRow,
		TopLeftCell: cellName(2, xlsxFirstRow),
		ActivePane:  "bottomRight",
	}); err != nil {
		return "", fmt.Errorf("freeze header: %w", err)
	}

	if err := f.SaveAs(outputFilename); err != nil {
		return "", fmt.Errorf("error writing XLSX file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// cellName ignores the error; coordinates here are always positive.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#BFBFBF",
			Style: 1,
		}
	}
	return borders
}
