package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of a workbook export.
type Sheet struct {
	Name         string
	Data         Dataset
	ColumnWidths []float64
}

// XLSXExporter renders one or more datasets into an xlsx workbook.
type XLSXExporter struct{}

// NewXLSXExporter builds an xlsx exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes each sheet in order; the first sheet becomes the active one.
func (e *XLSXExporter) Render(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E7EEF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		if len(sheet.Data.Headers) == 0 {
			return nil, fmt.Errorf("sheet %q requires at least one header", sheet.Name)
		}
		name := sheet.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	header := make([]interface{}, len(sheet.Data.Headers))
	for i, h := range sheet.Data.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", name, err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("resolve header range: %w", err)
	}
	if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", name, err)
	}

	for r, row := range sheet.Data.Rows {
		values := make([]interface{}, len(sheet.Data.Headers))
		for i, h := range sheet.Data.Headers {
			values[i] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("resolve row cell: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", name, r+1, err)
		}
	}

	for i, width := range sheet.ColumnWidths {
		if i >= len(sheet.Data.Headers) || width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("resolve column: %w", err)
		}
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("set %s width: %w", col, err)
		}
	}
	return nil
}
