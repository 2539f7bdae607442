// Package render turns a generated report into its HTML and PDF documents.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/guttosm/permitpulse/internal/domain/models"
)

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets served under /static.
//
//go:embed static/*
var StaticFS embed.FS

// Columns is the fixed table header of every report.
var Columns = []string{"Permit Number", "Date and Time Received", "Date of Application", "Date of Issue"}

// Branding carries the presentation settings shared by HTML and PDF output.
type Branding struct {
	Title          string
	CurrencyLabel  string
	CurrencySymbol string
}

// ReportView is the data passed to report.html.
type ReportView struct {
	Branding
	Report  models.Report
	Columns []string
	PDFURL  string
}

// UploadView is the data passed to upload.html.
type UploadView struct {
	Title     string
	Error     string
	StartDate string
	EndDate   string
}

// NewReportView builds the template data for a report.
func NewReportView(b Branding, r models.Report, pdfURL string) ReportView {
	return ReportView{Branding: b, Report: r, Columns: Columns, PDFURL: pdfURL}
}

// FuncMap exposes formatting helpers to the templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":   Money,
		"percent": Percent,
		"date":    func(t time.Time) string { return t.Format("2006-01-02") },
	}
}

// Templates parses the embedded template set. Template names are the file
// base names ("upload.html", "report.html").
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(FuncMap()).ParseFS(TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// WriteHTML renders the report page to w.
func WriteHTML(w io.Writer, view ReportView) error {
	t, err := Templates()
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, "report.html", view)
}

// Money formats an amount with two decimals and thousands separators, e.g. 1 250.50.
// Non-finite amounts are written as +Inf, -Inf or NaN.
func Money(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var grouped []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, intPart[i])
	}

	out := string(grouped) + frac
	if neg {
		out = "-" + out
	}
	return out
}

// Percent formats a percentage with two decimals.
func Percent(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
