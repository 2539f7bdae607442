package models

import "time"

// ReportRun is the persisted history entry of a generated report.
//
// swagger:model ReportRun
type ReportRun struct {
	ID                 string    `json:"id" example:"2b0f7c1e-9d7a-4c1e-8f53-1d8c3a2f4b6e"`
	SourceFile         string    `json:"source_file" example:"transactions.xlsx"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	RowCount           int       `json:"row_count" example:"120"`
	TotalRevenue       float64   `json:"total_revenue" example:"1250.50"`
	PermitsIssued      int       `json:"permits_issued" example:"42"`
	CapturedWithin48h  int       `json:"captured_within_48h" example:"37"`
	CapturedPercentage float64   `json:"captured_percentage" example:"88.09"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewReportRun builds the history entry for a report.
func NewReportRun(r Report, rowCount int) ReportRun {
	return ReportRun{
		ID:                 r.ID,
		SourceFile:         r.SourceFile,
		StartDate:          r.Range.Start,
		EndDate:            r.Range.End,
		RowCount:           rowCount,
		TotalRevenue:       r.Metrics.TotalRevenue,
		PermitsIssued:      r.Metrics.PermitsIssued,
		CapturedWithin48h:  r.Metrics.CapturedWithin48h,
		CapturedPercentage: r.Metrics.CapturedPercentage,
		CreatedAt:          r.GeneratedAt,
	}
}
