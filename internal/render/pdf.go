package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/guttosm/permitpulse/internal/domain/models"
)

const (
	inch       = 25.4 // mm
	logoWidth  = 1 * inch
	rowHeight  = 7.0
	lineHeight = 6.0
)

// columnWidths add up to the usable width of a Letter page with 10mm margins.
var columnWidths = []float64{37.9, 54, 50, 54}

// PDFRenderer lays out a report as a Letter-size PDF: logo, title, metrics
// block and the transactions table.
type PDFRenderer struct {
	branding Branding
	logo     []byte
}

// NewPDFRenderer builds a renderer using the embedded logo.
func NewPDFRenderer(b Branding) (*PDFRenderer, error) {
	logo, err := StaticFS.ReadFile("static/logo.png")
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	return &PDFRenderer{branding: b, logo: logo}, nil
}

// Render produces the PDF bytes for r. It never touches the filesystem, so
// concurrent calls are independent.
func (p *PDFRenderer) Render(r models.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(p.branding.Title, true)
	pdf.SetCreator("permitpulse", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()

	// ─── Logo ─────────────────────────────────────
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(p.logo))
	pdf.ImageOptions("logo", (pageW-logoWidth)/2, pdf.GetY(), logoWidth, 0, true, opts, 0, "")
	pdf.Ln(0.25 * inch)

	// ─── Title ────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(p.branding.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("%s to %s", r.Range.Start.Format("2006-01-02"), r.Range.End.Format("2006-01-02"))
	pdf.CellFormat(0, lineHeight, period, "", 1, "C", false, 0, "")
	pdf.Ln(0.5 * inch)

	// ─── Metrics ──────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, lineHeight, "Metrics", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range p.metricLines(r.Metrics) {
		pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(0.5 * inch)

	// ─── Table ────────────────────────────────────
	header := func() {
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.35)
		pdf.SetFont("Helvetica", "B", 11)
		for i, col := range Columns {
			pdf.CellFormat(columnWidths[i], rowHeight+2, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 10)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, bottom := pdf.GetAutoPageBreak()
	for _, row := range r.Rows {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		cells := []string{row.PermitNumber, row.CreateTime, row.ApplicationDate, row.IssueTime}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], rowHeight, clip(pdf, tr(c), columnWidths[i]), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Rows) == 0 {
		pdf.CellFormat(sum(columnWidths), rowHeight, "No transactions in the selected range.", "1", 1, "C", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PDFRenderer) metricLines(m models.Metrics) []string {
	return []string{
		fmt.Sprintf("Total Revenue Collected (%s): %s %s", p.branding.CurrencyLabel, p.branding.CurrencySymbol, Money(m.TotalRevenue)),
		fmt.Sprintf("Number of Permits Issued: %d", m.PermitsIssued),
		fmt.Sprintf("Number of Permits Captured and Issued within 48 Hours: %d", m.CapturedWithin48h),
		fmt.Sprintf("Percentage of Permits Captured and Issued within 48 Hours: %s%%", Percent(m.CapturedPercentage)),
	}
}

// clip shortens s with a trailing "..." so it fits a cell of width w in the
// current font. s is already in the single-byte PDF encoding.
func clip(pdf *fpdf.Fpdf, s string, w float64) string {
	room := w - 2*pdf.GetCellMargin()
	if pdf.GetStringWidth(s) <= room {
		return s
	}
	n := len(s)
	for n > 0 && pdf.GetStringWidth(s[:n]+"...") > room {
		n--
	}
	return s[:n] + "..."
}

func sum(xs []float64) float64 {
	var t float64
	for _, x := range xs {
		t += x
	}
	return t
}
