package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHeader(t *testing.T) {
	cases := []struct {
		name        string
		header      []string
		wantMissing []string
	}{
		{
			name:   "exact order",
			header: []string{"dbPermitNo", "dbCreateTime", "dbAppDate", "dbIssueTime", "dbPermitFee"},
		},
		{
			name:   "any order with extras, BOM and padding",
			header: []string{"\ufeffdbPermitFee", " dbIssueTime ", "Notes", "dbAppDate", "dbCreateTime", "dbPermitNo"},
		},
		{
			name:        "two missing",
			header:      []string{"dbPermitNo", "dbCreateTime", "dbAppDate"},
			wantMissing: []string{"dbIssueTime", "dbPermitFee"},
		},
		{
			name:        "empty header",
			header:      nil,
			wantMissing: []string{"dbPermitNo", "dbCreateTime", "dbAppDate", "dbIssueTime", "dbPermitFee"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ci, err := ValidateHeader(tc.header)
			if tc.wantMissing == nil {
				require.NoError(t, err)
				assert.Len(t, ci, len(requiredColumns))
				return
			}
			var mce *MissingColumnsError
			require.ErrorAs(t, err, &mce)
			assert.Equal(t, tc.wantMissing, mce.Missing)
			assert.Contains(t, err.Error(), "dbPermitFee")
		})
	}
}

func TestRowToRecord(t *testing.T) {
	ci, err := ValidateHeader([]string{"dbPermitFee", "dbPermitNo", "dbCreateTime", "dbAppDate", "dbIssueTime"})
	require.NoError(t, err)

	rec := rowToRecord([]string{" 150.25", "P-1", "2024-01-10 09:00:00", "2024-01-09"}, ci)

	assert.Equal(t, "P-1", rec.PermitNumber)
	assert.Equal(t, "2024-01-10 09:00:00", rec.CreateTime)
	assert.Equal(t, "2024-01-09", rec.ApplicationDate)
	assert.Equal(t, "", rec.IssueTime, "short row pads with blanks")
	assert.InDelta(t, 150.25, rec.PermitFee, 1e-9)
}

func TestParseFee(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100", 100},
		{"1,250.50", 1250.5},
		{"R 99.99", 99.99},
		{"R1 000", 1000},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.InDelta(t, tc.want, parseFee(tc.in), 1e-9)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, isBlank(nil))
	assert.True(t, isBlank([]string{"", "  "}))
	assert.False(t, isBlank([]string{"", "x"}))
}
