package source

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/diillson/pe-budget-dashboard-go/internal/domain/entity"
	"github.com/diillson/pe-budget-dashboard-go/internal/domain/hierarchy"
	"github.com/diillson/pe-budget-dashboard-go/internal/shared/types"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// DecodeRows parses the content of a budget file. ext is the file extension
// including the dot. numericFields names the text columns of CSV and XLSX
// input read as numbers; when empty, any cell that parses as a number is
// read as one unless it is a zero-padded code such as "00123". JSON and
// YAML keep their own typing.
func DecodeRows(ext string, data []byte, numericFields []string) ([]entity.FlatRow, error) {
	var numeric map[string]bool
	if len(numericFields) > 0 {
		numeric = make(map[string]bool, len(numericFields))
		for _, f := range numericFields {
			numeric[f] = true
		}
	}

	switch strings.ToLower(ext) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".csv":
		return decodeCSV(data, numeric)
	case ".xlsx":
		return decodeXLSX(data, numeric)
	default:
		return nil, fmt.Errorf("%w for input: %q", types.ErrUnsupportedFormat, ext)
	}
}

func decodeJSON(data []byte) ([]entity.FlatRow, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing JSON input: %w", err)
	}
	return objectRows(doc)
}

func decodeYAML(data []byte) ([]entity.FlatRow, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing YAML input: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	return objectRows(doc)
}

// objectRows requires doc to be a sequence of objects.
func objectRows(doc interface{}) ([]entity.FlatRow, error) {
	items, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T", hierarchy.ErrInvalidInput, doc)
	}
	rows := make([]entity.FlatRow, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", hierarchy.ErrInvalidInput, i, item)
		}
		rows = append(rows, entity.FlatRow(obj))
	}
	return rows, nil
}

func decodeCSV(data []byte, numeric map[string]bool) ([]entity.FlatRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV input: %w", err)
	}
	return tableRows(records, numeric), nil
}

func decodeXLSX(data []byte, numeric map[string]bool) ([]entity.FlatRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening XLSX input: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("error reading XLSX input: no worksheet found")
	}
	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheetName, err)
	}
	return tableRows(records, numeric), nil
}

// tableRows turns a header row plus records of text cells into rows.
func tableRows(records [][]string, numeric map[string]bool) []entity.FlatRow {
	if len(records) == 0 {
		return nil
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]entity.FlatRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(entity.FlatRow, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			if v, ok := cellValue(h, record[i], numeric); ok {
				row[h] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// cellValue converts a text cell. Grouping columns stay strings. With a
// numeric set only its columns are parsed; without one, zero-padded codes
// stay strings. Empty cells are absent.
func cellValue(field, cell string, numeric map[string]bool) (interface{}, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil, false
	}
	if entity.IsGroupingField(field) {
		return cell, true
	}
	if numeric != nil && !numeric[field] {
		return cell, true
	}
	if numeric == nil && isZeroPadded(cell) {
		return cell, true
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64); err == nil {
		return f, true
	}
	return cell, true
}

// isZeroPadded reports a digit string with a leading zero, like "007".
func isZeroPadded(cell string) bool {
	return len(cell) > 1 && cell[0] == '0' && cell[1] >= '0' && cell[1] <= '9'
}

func isBlank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
