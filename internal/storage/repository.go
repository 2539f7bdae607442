package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/guttosm/permitpulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// ErrSchemaMissing signals that the report_runs table does not exist yet.
var ErrSchemaMissing = errors.New("report history schema missing, run migrations")

// undefinedTable is the PostgreSQL SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// RunsRepository defines contract for report history DB operations.
type RunsRepository interface {
	InsertRun(ctx context.Context, run models.ReportRun) error
	ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error)
	GetRun(ctx context.Context, id string) (*models.ReportRun, error)
}

type runsRepository struct {
	db *sql.DB
}

func NewRunsRepository(db *sql.DB) RunsRepository {
	return &runsRepository{db: db}
}

const runColumns = `id, source_file, start_date, end_date, row_count, total_revenue,
		permits_issued, captured_within_48h, captured_percentage, created_at`

// InsertRun records one generated report. Re-inserting the same id is a no-op.
func (r *runsRepository) InsertRun(ctx context.Context, run models.ReportRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO report_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`,
		run.ID,
		run.SourceFile,
		run.StartDate,
		run.EndDate,
		run.RowCount,
		run.TotalRevenue,
		run.PermitsIssued,
		run.CapturedWithin48h,
		run.CapturedPercentage,
		run.CreatedAt,
	)
	return classify(err)
}

// ListRuns returns the most recent runs first.
func (r *runsRepository) ListRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.ReportRun, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// GetRun returns a single run, or nil when the id is unknown.
func (r *runsRepository) GetRun(ctx context.Context, id string) (*models.ReportRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM report_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return &run, nil
}

// classify maps driver errors that callers can act on to package errors.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, pqErr.Message)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.ReportRun, error) {
	var run models.ReportRun
	err := s.Scan(
		&run.ID,
		&run.SourceFile,
		&run.StartDate,
		&run.EndDate,
		&run.RowCount,
		&run.TotalRevenue,
		&run.PermitsIssued,
		&run.CapturedWithin48h,
		&run.CapturedPercentage,
		&run.CreatedAt,
	)
	return run, err
}
