package ingestion

import (
	"math"
	"strconv"
	"strings"

	"github.com/guttosm/permitpulse/internal/domain/models"
)

// rowToRecord converts one data row into a models.TransactionRecord.
// It is TOLERANT: missing cells become empty strings and an unreadable fee
// becomes 0, so a single bad cell never rejects the upload.
//
// Timestamp cells are kept as text; report.Aggregate coerces them.
func rowToRecord(row []string, ci columnIndex) models.TransactionRecord {
	return models.TransactionRecord{
		PermitNumber:    ci.cell(row, ColPermitNumber),
		CreateTime:      ci.cell(row, ColCreateTime),
		ApplicationDate: ci.cell(row, ColApplicationDate),
		IssueTime:       ci.cell(row, ColIssueTime),
		PermitFee:       parseFee(ci.cell(row, ColPermitFee)),
	}
}

// parseFee reads a money cell such as "1 250.50", "R1,250.50" or "100".
// Anything that still fails to parse counts as 0.
func parseFee(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R")
	s = strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// isBlank reports whether every cell of row is empty.
func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
