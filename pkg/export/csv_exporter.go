package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Dataset is one table of export rows keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Len reports the number of data rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Record returns row i ordered by Headers. Missing keys render as empty cells.
func (d Dataset) Record(i int) []string {
	record := make([]string, len(d.Headers))
	for j, header := range d.Headers {
		record[j] = d.Rows[i][header]
	}
	return record
}

// CSVExporter renders feedback and other free-text datasets as spreadsheet-safe CSV.
type CSVExporter struct {
	// Escape formula-looking cells so free text typed by assessors never executes in a spreadsheet.
	EscapeFormulas bool
}

// NewCSVExporter builds an exporter with formula escaping enabled.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{EscapeFormulas: true}
}

// Render writes a UTF-8 BOM, the header row and every record.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString("\ufeff") // BOM for spreadsheet encoding detection
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i := range data.Rows {
		record := data.Record(i)
		if e.EscapeFormulas {
			for j, cell := range record {
				record[j] = escapeFormula(cell)
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	if strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
