package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/permitpulse/internal/domain/models"
)

func january() models.DateRange {
	return models.NewDateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)
}

func TestAggregate_Scenarios(t *testing.T) {
	cases := []struct {
		name         string
		records      []models.TransactionRecord
		wantRows     int
		wantIssued   int
		wantCaptured int
		wantRevenue  float64
		wantPercent  float64
	}{
		{
			name: "issued within 48h",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", IssueTime: "2024-01-11 08:00:00", PermitFee: 100},
			},
			wantRows: 1, wantIssued: 1, wantCaptured: 1, wantRevenue: 100, wantPercent: 100,
		},
		{
			name: "issued after five days",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", IssueTime: "2024-01-15 09:00:00", PermitFee: 100},
			},
			wantRows: 1, wantIssued: 1, wantCaptured: 0, wantRevenue: 100, wantPercent: 0,
		},
		{
			name: "created outside range",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2023-12-10 09:00:00", IssueTime: "2023-12-11 08:00:00", PermitFee: 100},
			},
		},
		{
			name: "no records",
		},
		{
			name: "unparseable create time",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "not a date", IssueTime: "2024-01-11 08:00:00", PermitFee: 100},
			},
		},
		{
			name: "null issue time counts as issued but not captured",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", IssueTime: "", PermitFee: 50},
				{PermitNumber: "P2", CreateTime: "2024-01-12 09:00:00", IssueTime: "2024-01-14 09:00:00", PermitFee: 25.5},
			},
			wantRows: 2, wantIssued: 2, wantCaptured: 1, wantRevenue: 75.5, wantPercent: 50,
		},
		{
			name: "exactly 48h is captured",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", IssueTime: "2024-01-12 09:00:00", PermitFee: 1},
				{PermitNumber: "P2", CreateTime: "2024-01-10 09:00:00", IssueTime: "2024-01-12 09:00:01", PermitFee: 1},
			},
			wantRows: 2, wantIssued: 2, wantCaptured: 1, wantRevenue: 2, wantPercent: 50,
		},
		{
			name: "start bound inclusive, end bound at midnight",
			records: []models.TransactionRecord{
				{PermitNumber: "P1", CreateTime: "2024-01-01 00:00:00", PermitFee: 1},
				{PermitNumber: "P2", CreateTime: "2024-01-31 00:00:00", PermitFee: 2},
				{PermitNumber: "P3", CreateTime: "2024-01-31 00:00:01", PermitFee: 4},
			},
			wantRows: 2, wantIssued: 2, wantRevenue: 3,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, m := Aggregate(tc.records, january())

			assert.Len(t, rows, tc.wantRows)
			assert.Equal(t, tc.wantIssued, m.PermitsIssued)
			assert.Equal(t, tc.wantCaptured, m.CapturedWithin48h)
			assert.InDelta(t, tc.wantRevenue, m.TotalRevenue, 1e-9)
			assert.InDelta(t, tc.wantPercent, m.CapturedPercentage, 1e-9)
		})
	}
}

func TestAggregate_ProjectsRowsInInputOrder(t *testing.T) {
	records := []models.TransactionRecord{
		{PermitNumber: "C", CreateTime: "2024-01-20T10:30:00", ApplicationDate: "2024-01-19", IssueTime: "2024-01-21 10:30:00"},
		{PermitNumber: "skip", CreateTime: "2024-02-20 10:30:00"},
		{PermitNumber: "A", CreateTime: "2024-01-05 08:00:00", ApplicationDate: "04/01/2024", IssueTime: "garbage"},
	}

	rows, _ := Aggregate(records, january())

	require.Len(t, rows, 2)
	assert.Equal(t, models.ReportRow{
		PermitNumber:    "C",
		CreateTime:      "2024-01-20 10:30:00",
		ApplicationDate: "2024-01-19",
		IssueTime:       "2024-01-21 10:30:00",
	}, rows[0])
	assert.Equal(t, models.ReportRow{
		PermitNumber:    "A",
		CreateTime:      "2024-01-05 08:00:00",
		ApplicationDate: "04/01/2024",
		IssueTime:       "",
	}, rows[1])
}

func TestAggregate_InvertedRangeSelectsNothing(t *testing.T) {
	r := models.NewDateRange(
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	records := []models.TransactionRecord{
		{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", PermitFee: 10},
	}

	rows, m := Aggregate(records, r)

	assert.Empty(t, rows)
	assert.Equal(t, models.Metrics{}, m)
}

func TestAggregate_IsDeterministic(t *testing.T) {
	records := []models.TransactionRecord{
		{PermitNumber: "P1", CreateTime: "2024-01-10 09:00:00", IssueTime: "2024-01-11 08:00:00", PermitFee: 0.1},
		{PermitNumber: "P2", CreateTime: "2024-01-11 09:00:00", IssueTime: "", PermitFee: 0.2},
		{PermitNumber: "P3", CreateTime: "", IssueTime: "2024-01-11 08:00:00", PermitFee: 0.3},
	}

	rows1, m1 := Aggregate(records, january())
	rows2, m2 := Aggregate(records, january())

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, m1, m2)
	assert.Equal(t, "", records[2].CreateTime, "input must not be mutated")
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{in: "2024-01-10 09:00:00", want: want, wantOK: true},
		{in: " 2024-01-10T09:00:00 ", want: want, wantOK: true},
		{in: "2024-01-10T11:00:00+02:00", want: want, wantOK: true},
		{in: "2024-01-10 09:00", want: want, wantOK: true},
		{in: "2024/01/10 09:00:00", want: want, wantOK: true},
		{in: "01/10/2024 09:00:00", want: want, wantOK: true},
		{in: "2024-01-10 09:00:00.250", want: want.Add(250 * time.Millisecond), wantOK: true},
		{in: "2024-01-10", want: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), wantOK: true},
		{in: "", wantOK: false},
		{in: "NaT", wantOK: false},
		{in: "nan", wantOK: false},
		{in: "10 Jan", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.in)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.True(t, tc.want.Equal(got), "got %v want %v", got, tc.want)
			}
		})
	}
}
