package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const maxColumnWidth = 60

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render writes the dataset to a sheet named sheet with a bold, filterable
// header row and widths sized to the content.
func (e *XLSXExporter) Render(data Dataset, sheet string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]float64, len(data.Headers))
	for i, header := range data.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write xlsx header: %w", err)
		}
		widths[i] = columnWidth(header) + 2
	}

	for r, row := range data.Rows {
		for i, value := range data.record(row) {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write xlsx row: %w", err)
			}
			if w := columnWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(data.Headers), 1)
	if err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", lastHeader, style)
	}
	if err := f.AutoFilter(sheet, "A1:"+lastHeader, nil); err != nil {
		return nil, fmt.Errorf("apply xlsx filter: %w", err)
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidth(value string) float64 {
	w := float64(len([]rune(value))) * 1.1
	if w < 10 {
		w = 10
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return w
}
