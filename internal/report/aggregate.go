// Package report computes the permit transaction metrics and the display
// projection of the rows that fall inside a date range.
package report

import (
	"time"

	"github.com/guttosm/permitpulse/internal/domain/models"
)

// CaptureWindow is the maximum delay between capture and issue for a permit
// to count as captured.
const CaptureWindow = 48 * time.Hour

// Aggregate filters records to r and summarizes them.
//
// A record belongs to the filtered subset only when its CreateTime parses and
// lies within r (inclusive). Rows keep input order. An inverted range simply
// selects nothing. Aggregate never fails; malformed cells are treated as null.
func Aggregate(records []models.TransactionRecord, r models.DateRange) ([]models.ReportRow, models.Metrics) {
	var (
		rows    []models.ReportRow
		metrics models.Metrics
	)

	for _, rec := range records {
		created, ok := ParseTimestamp(rec.CreateTime)
		if !ok || !r.Contains(created) {
			continue
		}
		issued, issuedOK := ParseTimestamp(rec.IssueTime)

		metrics.TotalRevenue += rec.PermitFee
		metrics.PermitsIssued++
		if issuedOK && issued.Sub(created) <= CaptureWindow {
			metrics.CapturedWithin48h++
		}

		rows = append(rows, models.ReportRow{
			PermitNumber:    rec.PermitNumber,
			CreateTime:      formatTimestamp(created, true),
			ApplicationDate: rec.ApplicationDate,
			IssueTime:       formatTimestamp(issued, issuedOK),
		})
	}

	if metrics.PermitsIssued > 0 {
		metrics.CapturedPercentage = float64(metrics.CapturedWithin48h) / float64(metrics.PermitsIssued) * 100
	}

	return rows, metrics
}
