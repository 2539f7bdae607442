package ingestion

import (
	"errors"
	"fmt"
	"strings"
)

// Required column names of the permit transactions export.
const (
	ColPermitNumber    = "dbPermitNo"
	ColCreateTime      = "dbCreateTime"
	ColApplicationDate = "dbAppDate"
	ColIssueTime       = "dbIssueTime"
	ColPermitFee       = "dbPermitFee"
)

// requiredColumns lists every column the report needs, in canonical order.
// Unlike a positional layout, the upload may place them anywhere and may
// carry extra columns.
var requiredColumns = []string{
	ColPermitNumber,
	ColCreateTime,
	ColApplicationDate,
	ColIssueTime,
	ColPermitFee,
}

var (
	// ErrEmptyUpload is returned when the upload has no header row at all.
	ErrEmptyUpload = errors.New("upload is empty")
	// ErrUnsupportedFormat is returned for file extensions that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// MissingColumnsError reports every required column absent from the header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// columnIndex maps required column names to their position in the header.
type columnIndex map[string]int

// ValidateHeader checks header against the required columns and returns the
// position of each one. Matching is exact after trimming whitespace and a
// leading UTF-8 BOM.
//
// Returns:
//   - *MissingColumnsError listing all missing columns when any is absent.
func ValidateHeader(header []string) (columnIndex, error) {
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := seen[name]; !dup {
			seen[name] = i
		}
	}

	idx := make(columnIndex, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		pos, ok := seen[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = pos
	}

	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return idx, nil
}

// cell returns the trimmed value at the column's position, or "" for short rows.
func (ci columnIndex) cell(row []string, col string) string {
	pos := ci[col]
	if pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}
