package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/njchilds90/funcstudy"
)

const (
	PDFFileName = "Etude_fonction.pdf"
	PDFMimeType = "application/pdf"
)

// The core PDF fonts are cp1252; symbols outside it are spelled out.
var pdfSymbols = strings.NewReplacer(
	"∞", "inf",
	"↗", "increasing",
	"↘", "decreasing",
	"→", "->",
	"∪", "U",
	"∩", "n",
	"∅", "{}",
	"≤", "<=",
	"≥", ">=",
)

// PDF bundles a full study: the plot on page one, the summary on page two
// and the variation table on page three.
func PDF(r *funcstudy.Report, plot []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfSymbols.Replace(s)) }
	pdf.SetTitle("Function study: "+r.Function.Text, true)
	pdf.SetCreator("funcstudy", true)

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	heading := func(s string) {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, text(s), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	// Page 1: plot.
	pdf.AddPage()
	heading("Graph of f(x) = " + r.Function.String())
	if len(plot) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("plot", opts, bytes.NewReader(plot))
		h := contentW * PlotHeight / PlotWidth
		pdf.ImageOptions("plot", left, pdf.GetY(), contentW, h, true, opts, 0, "")
	} else {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 8, "No plot available.", "", 1, "L", false, 0, "")
	}

	// Page 2: summary.
	pdf.AddPage()
	heading("Study of f(x)")
	for _, l := range Summary(r) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, text(l.Label), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, text(l.Value), "", "L", false)
		pdf.Ln(1)
	}

	// Page 3: variation table.
	pdf.AddPage()
	heading("Variation table")
	colW := contentW / float64(len(VariationHeader))
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, h := range VariationHeader {
		pdf.CellFormat(colW, 8, text(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, cells := range VariationCells(r.Variation) {
		for _, c := range cells {
			pdf.CellFormat(colW, 7, text(c), "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
