package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// renderPDF lays out a landscape report with a title and one table. The
// header row repeats whenever the table spills onto a new page.
func renderPDF(records []Record) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Audit Logs Report", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if len(records) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, "No entries matched the requested filters.", "", 1, "C", false, 0, "")
		return output(pdf)
	}

	pageWidth, pageHeight := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	usable := pageWidth - left - right
	colWidth := usable / float64(len(records[0].Fields))
	rowHeight := 6.0

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(44, 62, 80)
		pdf.SetTextColor(255, 255, 255)
		for _, f := range records[0].Fields {
			pdf.CellFormat(colWidth, rowHeight, f.Name, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(rowHeight)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(0, 0, 0)
	}

	writeHeader()
	for _, r := range records {
		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
		}
		for _, f := range r.Fields {
			pdf.CellFormat(colWidth, rowHeight, truncate(f.Value, 40), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(rowHeight)
	}

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
