package dto

import "github.com/guttosm/permitpulse/internal/domain/models"

// ReportResponse represents the JSON structure returned by
// POST /api/v1/reports.
//
// Dates are rendered as YYYY-MM-DD; PDFURL points at the transient copy of
// the rendered PDF, which expires after REPORT_CACHE_TTL.
type ReportResponse struct {
	ID         string             `json:"id" example:"2b0f7c1e-9d7a-4c1e-8f53-1d8c3a2f4b6e"`
	SourceFile string             `json:"source_file" example:"transactions.xlsx"`
	StartDate  string             `json:"start_date" example:"2024-01-01"`
	EndDate    string             `json:"end_date" example:"2024-01-31"`
	Metrics    models.Metrics     `json:"metrics"`
	Rows       []models.ReportRow `json:"rows"`
	PDFURL     string             `json:"pdf_url,omitempty" example:"/api/v1/reports/2b0f7c1e-9d7a-4c1e-8f53-1d8c3a2f4b6e/pdf"`
}

// NewReportResponse maps a generated report into its API shape.
func NewReportResponse(r models.Report) ReportResponse {
	rows := r.Rows
	if rows == nil {
		rows = []models.ReportRow{}
	}
	return ReportResponse{
		ID:         r.ID,
		SourceFile: r.SourceFile,
		StartDate:  r.Range.Start.Format("2006-01-02"),
		EndDate:    r.Range.End.Format("2006-01-02"),
		Metrics:    r.Metrics,
		Rows:       rows,
		PDFURL:     "/api/v1/reports/" + r.ID + "/pdf",
	}
}

// RunsResponse wraps the report history listing.
type RunsResponse struct {
	Runs []models.ReportRun `json:"runs"`
}
