package models

import "time"

// Metrics summarizes the filtered subset of transactions.
//
// Fields:
//   - TotalRevenue: sum of permit fees.
//   - PermitsIssued: number of records in the range.
//   - CapturedWithin48h: records issued at most 48 hours after capture.
//   - CapturedPercentage: CapturedWithin48h / PermitsIssued * 100, 0 when nothing was issued.
type Metrics struct {
	TotalRevenue       float64 `json:"total_revenue" example:"1250.50"`
	PermitsIssued      int     `json:"permits_issued" example:"42"`
	CapturedWithin48h  int     `json:"captured_within_48h" example:"37"`
	CapturedPercentage float64 `json:"captured_percentage" example:"88.09"`
}

// ReportRow is the display projection of one filtered record.
// Timestamps are formatted as "2006-01-02 15:04:05" or left empty when null.
type ReportRow struct {
	PermitNumber    string `json:"permit_number" example:"P-000123"`
	CreateTime      string `json:"create_time" example:"2024-01-10 09:00:00"`
	ApplicationDate string `json:"application_date" example:"2024-01-09"`
	IssueTime       string `json:"issue_time" example:"2024-01-11 08:00:00"`
}

// Report is one generated transaction report.
type Report struct {
	ID          string
	SourceFile  string
	Range       DateRange
	Rows        []ReportRow
	Metrics     Metrics
	GeneratedAt time.Time
}
