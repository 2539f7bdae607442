package models

import "time"

// TransactionRecord represents a single row of the uploaded permit spreadsheet.
//
// Timestamp columns are kept as the raw cell text; coercion to time.Time
// happens during aggregation so that an unparseable value degrades to null
// instead of failing the whole upload.
//
// Column mapping:
//   - dbPermitNo   → PermitNumber
//   - dbCreateTime → CreateTime
//   - dbAppDate    → ApplicationDate
//   - dbIssueTime  → IssueTime
//   - dbPermitFee  → PermitFee
type TransactionRecord struct {
	PermitNumber    string
	CreateTime      string
	IssueTime       string
	ApplicationDate string
	PermitFee       float64
}

// DateRange is an inclusive [Start, End] range of calendar dates.
// Both bounds are midnight-anchored instants in UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes start and end to midnight UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: midnightUTC(start), End: midnightUTC(end)}
}

// Contains reports whether t falls within the inclusive range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Inverted reports whether Start is after End.
func (r DateRange) Inverted() bool {
	return r.Start.After(r.End)
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
