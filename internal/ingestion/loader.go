package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/report"
)

// Load parses an uploaded permit export into transaction records.
//
// The format is chosen from the filename extension:
//   - .xlsx / .xlsm: first worksheet, read with excelize.
//   - .csv:          comma separated, first line is the header.
//
// It fails on:
//   - unsupported extensions (ErrUnsupportedFormat)
//   - an upload without a header row (ErrEmptyUpload)
//   - a header missing required columns (*MissingColumnsError)
//   - unreadable workbook / CSV structure
//
// It tolerates short rows, blank rows and unparseable cells.
func Load(ctx context.Context, filename string, r io.Reader) ([]models.TransactionRecord, error) {
	var (
		recs []models.TransactionRecord
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx", ".xlsm":
		recs, err = loadWorkbook(ctx, r)
	case ".csv":
		recs, err = loadCSV(ctx, r)
	default:
		return nil, fmt.Errorf("%w: %q (expected .xlsx or .csv)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	logger.L().Debug().Str("file", filename).Int("records", len(recs)).Msg("upload parsed")
	return recs, nil
}

// loadWorkbook reads the first worksheet twice: once with cell formatting
// applied (display columns) and once raw, so timestamp and fee columns can be
// read from their underlying numeric values.
func loadWorkbook(ctx context.Context, r io.Reader) ([]models.TransactionRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyUpload
	}

	display, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q raw values: %w", sheet, err)
	}
	if len(display) == 0 {
		return nil, ErrEmptyUpload
	}

	ci, err := ValidateHeader(display[0])
	if err != nil {
		return nil, err
	}

	out := make([]models.TransactionRecord, 0, len(display)-1)
	for i := 1; i < len(display); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(display[i]) {
			continue
		}

		var rawRow []string
		if i < len(raw) {
			rawRow = raw[i]
		}

		rec := rowToRecord(display[i], ci)
		rec.CreateTime = workbookTimestamp(ci.cell(rawRow, ColCreateTime), rec.CreateTime)
		rec.IssueTime = workbookTimestamp(ci.cell(rawRow, ColIssueTime), rec.IssueTime)
		if fee := ci.cell(rawRow, ColPermitFee); fee != "" {
			rec.PermitFee = parseFee(fee)
		}
		out = append(out, rec)
	}

	return out, nil
}

// workbookTimestamp turns an Excel date serial into canonical timestamp text.
// Cells stored as text are returned as displayed.
func workbookTimestamp(raw, shown string) string {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return shown
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return shown
	}
	return t.Round(time.Second).Format(report.DisplayLayout)
}

func loadCSV(ctx context.Context, r io.Reader) ([]models.TransactionRecord, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // short rows are padded by columnIndex.cell

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyUpload
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	ci, err := ValidateHeader(header)
	if err != nil {
		return nil, err
	}

	var out []models.TransactionRecord
	lineNumber := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if isBlank(row) {
			continue
		}
		out = append(out, rowToRecord(row, ci))
	}

	return out, nil
}
