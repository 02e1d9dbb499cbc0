// Package csvio reads the CSV inputs: the component export and the auxiliary
// reference sheets. It is the row-supplying collaborator of the conversion
// core; header normalization happens here so the core only ever sees the
// canonical field names.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/isotools/pcfgen/internal/models"
)

// RowIssue records a row that could not be turned into a component record.
// Issues are reported, not fatal; the remaining rows still convert.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// NormalizeHeader maps a source header cell to the canonical field form:
// trimmed, uppercased, inner whitespace and underscores collapsed to a dash.
// "Start X" and "START_X" both become "START-X".
func NormalizeHeader(h string) string {
	h = strings.ToUpper(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), "-")
}

// ReadComponents reads the component export. The first non-empty record is
// the header row; every following record becomes a ComponentRecord keyed by
// its REFNO cell, or by a generated row key when the export carries none.
func ReadComponents(r io.Reader) ([]*models.ComponentRecord, []RowIssue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var headers []string
	var records []*models.ComponentRecord
	var issues []RowIssue
	seen := map[string]bool{}

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read component csv: %w", err)
		}
		line++
		if isEmptyRow(row) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(row))
			for i, h := range row {
				headers[i] = NormalizeHeader(h)
			}
			continue
		}

		raw := make(map[string]string, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			raw[headers[i]] = strings.TrimSpace(cell)
		}

		refno := raw[models.FieldRefno]
		if refno == "" {
			refno = fmt.Sprintf("ROW-%04d", line)
		}
		if seen[refno] {
			issues = append(issues, RowIssue{Line: line, Reason: fmt.Sprintf("duplicate refno %q", refno)})
			continue
		}
		seen[refno] = true
		records = append(records, models.NewComponentRecord(refno, raw))
	}

	if headers == nil {
		return nil, issues, fmt.Errorf("component csv has no header row")
	}
	return records, issues, nil
}

// ReadSheet reads a raw cell grid without interpreting any row as a header.
// The linelist service does its own header detection on the result.
func ReadSheet(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var cells [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet csv: %w", err)
		}
		cells = append(cells, row)
	}
	return cells, nil
}

// ReadRefTable reads a master table whose first non-empty record is the
// header row (piping-class master, material map, weight master).
func ReadRefTable(r io.Reader) (*models.RefTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table := &models.RefTable{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference csv: %w", err)
		}
		if isEmptyRow(row) {
			continue
		}
		if table.Columns == nil {
			cols := make([]string, len(row))
			for i, h := range row {
				cols[i] = strings.TrimSpace(h)
			}
			table.Columns = cols
			continue
		}
		ref := models.RefRow{}
		for i, cell := range row {
			if i >= len(table.Columns) || table.Columns[i] == "" {
				continue
			}
			ref[table.Columns[i]] = strings.TrimSpace(cell)
		}
		table.Rows = append(table.Rows, ref)
	}

	if table.Columns == nil {
		return nil, fmt.Errorf("reference csv has no header row")
	}
	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
