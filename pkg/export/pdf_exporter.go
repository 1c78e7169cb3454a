package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Pair is one label/value line of a document-style PDF.
type Pair struct {
	Label string
	Value string
}

// PDFExporter renders datasets into a basic tabular PDF. Core fonts only
// cover Latin-1, so text passes through Translate when it is set.
type PDFExporter struct {
	Translate func(string) string
	// WideColumns switches to landscape once a table has more columns.
	WideColumns int
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter(translate func(string) string) *PDFExporter {
	return &PDFExporter{Translate: translate, WideColumns: 8}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation, width := "P", 190.0
	if e.WideColumns > 0 && len(data.Headers) > e.WideColumns {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(e.text(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	fontSize := 9.0
	if orientation == "L" {
		fontSize = 7
	}
	pdf.SetFont("Arial", "B", fontSize+1)
	colWidth := width / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, e.text(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", fontSize)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, e.text(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderPairs creates a single page of label/value lines, used for receipts.
func (e *PDFExporter) RenderPairs(title string, pairs []Pair, footer string) ([]byte, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("pdf requires at least one line")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(e.text(title)), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}
	for _, p := range pairs {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, e.text(p.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 7, e.text(p.Value), "", "", false)
	}
	if footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 6, e.text(footer), "", "C", false)
	}
	return output(pdf)
}

func (e *PDFExporter) text(v string) string {
	if e.Translate == nil {
		return v
	}
	return e.Translate(v)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
