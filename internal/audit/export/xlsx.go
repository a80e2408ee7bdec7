package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Audit Logs"

// widthSampleRows bounds the rows inspected for column auto-sizing. Sampling
// the first 100 rows keeps export latency flat on large result sets at the
// cost of occasionally truncated display width further down.
const widthSampleRows = 100

const (
	minColWidth = 10
	maxColWidth = 60
)

// renderXLSX writes a styled spreadsheet: dark header row, bordered cells,
// auto-filter, frozen header, sampled column widths. Cell values that would
// start a formula are escaped so exports can never smuggle live formulas
// into a viewer.
func renderXLSX(records []Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	borders := []excelize.Border{
		{Type: "left", Style: 1, Color: "B0B0B0"},
		{Type: "right", Style: 1, Color: "B0B0B0"},
		{Type: "top", Style: 1, Color: "B0B0B0"},
		{Type: "bottom", Style: 1, Color: "B0B0B0"},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2C3E50"}, Pattern: 1},
		Border:    borders,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{Border: borders})
	if err != nil {
		return nil, fmt.Errorf("build cell style: %w", err)
	}

	cols := 0
	if len(records) > 0 {
		cols = len(records[0].Fields)
	}

	widths := make([]int, cols)
	for i := 0; i < cols; i++ {
		name := records[0].Fields[i].Name
		if err := setCell(f, i+1, 1, name); err != nil {
			return nil, err
		}
		widths[i] = len(name)
	}

	for row, r := range records {
		for i, field := range r.Fields {
			if err := setCell(f, i+1, row+2, escapeFormula(field.Value)); err != nil {
				return nil, err
			}
			if row < widthSampleRows && len(field.Value) > widths[i] {
				widths[i] = len(field.Value)
			}
		}
	}

	if cols > 0 {
		lastHeader, err := excelize.CoordinatesToCellName(cols, 1)
		if err != nil {
			return nil, fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(xlsxSheet, "A1", lastHeader, headerStyle); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
		if len(records) > 0 {
			lastCell, err := excelize.CoordinatesToCellName(cols, len(records)+1)
			if err != nil {
				return nil, fmt.Errorf("body range: %w", err)
			}
			if err := f.SetCellStyle(xlsxSheet, "A2", lastCell, cellStyle); err != nil {
				return nil, fmt.Errorf("style body: %w", err)
			}
		}
		if err := f.AutoFilter(xlsxSheet, "A1:"+lastHeader, nil); err != nil {
			return nil, fmt.Errorf("set auto-filter: %w", err)
		}

		for i, w := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, fmt.Errorf("column name: %w", err)
			}
			width := clampWidth(w + 2)
			if err := f.SetColWidth(xlsxSheet, col, col, float64(width)); err != nil {
				return nil, fmt.Errorf("set column width: %w", err)
			}
		}
	}

	err = f.SetPanes(xlsxSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellStr(xlsxSheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}

// escapeFormula neutralizes formula-trigger prefixes with a leading
// apostrophe, the spreadsheet convention for "treat as text".
func escapeFormula(v string) string {
	if v == "" {
		return v
	}
	if strings.ContainsRune("=+-@", rune(v[0])) {
		return "'" + v
	}
	return v
}

func clampWidth(w int) int {
	if w < minColWidth {
		return minColWidth
	}
	if w > maxColWidth {
		return maxColWidth
	}
	return w
}
