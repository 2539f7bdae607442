// Package service wires ingestion, aggregation, rendering and run history
// into the report generation use case.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/ingestion"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/report"
	"github.com/guttosm/permitpulse/internal/storage"
)

var (
	// ErrInvalidRange is returned when the start date is after the end date.
	ErrInvalidRange = errors.New("start date must not be after end date")
	// ErrReportNotFound is returned for unknown or expired report documents.
	ErrReportNotFound = errors.New("report not found or expired")
	// ErrHistoryDisabled is returned by the history queries when no
	// repository is configured.
	ErrHistoryDisabled = errors.New("report history is not configured")
	// ErrRevenueOverflow is returned when the permit fees in range add up to
	// more than a float64 can hold.
	ErrRevenueOverflow = errors.New("total revenue is out of range")
)

// PDFRenderer renders a report into a PDF document.
type PDFRenderer interface {
	Render(r models.Report) ([]byte, error)
}

// DocumentStore keeps rendered documents by report id.
type DocumentStore interface {
	Put(id string, doc []byte)
	Get(id string) ([]byte, bool)
	Len() int
}

// GenerateRequest describes one uploaded spreadsheet and the range to report on.
type GenerateRequest struct {
	Filename  string
	Content   io.Reader
	Range     models.DateRange
	RenderPDF bool
}

// Result is the outcome of Generate.
//
// PDF is nil unless the request asked for it. RowCount is the number of
// records read from the upload, before filtering.
type Result struct {
	Report   models.Report
	PDF      []byte
	RowCount int
}

// ReportService defines the report generation use case.
type ReportService interface {
	Generate(ctx context.Context, req GenerateRequest) (*Result, error)
	PDF(id string) ([]byte, error)
	Runs(ctx context.Context, limit int) ([]models.ReportRun, error)
	Run(ctx context.Context, id string) (*models.ReportRun, error)
}

type reportService struct {
	renderer PDFRenderer
	store    DocumentStore
	runs     storage.RunsRepository
	now      func() time.Time
	newID    func() string
}

// NewReportService builds the service. runs may be nil, in which case
// reports are not recorded and the history queries return ErrHistoryDisabled.
func NewReportService(renderer PDFRenderer, store DocumentStore, runs storage.RunsRepository) ReportService {
	return &reportService{
		renderer: renderer,
		store:    store,
		runs:     runs,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (s *reportService) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	if req.Range.Inverted() {
		return nil, ErrInvalidRange
	}

	records, err := ingestion.Load(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, err
	}

	rows, metrics := report.Aggregate(records, req.Range)
	if math.IsInf(metrics.TotalRevenue, 0) || math.IsNaN(metrics.TotalRevenue) {
		return nil, ErrRevenueOverflow
	}
	rep := models.Report{
		ID:          s.newID(),
		SourceFile:  req.Filename,
		Range:       req.Range,
		Rows:        rows,
		Metrics:     metrics,
		GeneratedAt: s.now(),
	}
	res := &Result{Report: rep, RowCount: len(records)}

	log := logger.L().With().Str("report_id", rep.ID).Logger()

	g, gctx := errgroup.WithContext(ctx)
	if req.RenderPDF {
		g.Go(guard("render pdf", func() error {
			doc, err := s.renderer.Render(rep)
			if err != nil {
				return fmt.Errorf("render pdf: %w", err)
			}
			s.store.Put(rep.ID, doc)
			res.PDF = doc
			return nil
		}))
	}
	if s.runs != nil {
		g.Go(guard("record run", func() error {
			if err := s.runs.InsertRun(gctx, models.NewReportRun(rep, len(records))); err != nil {
				log.Warn().Err(err).Msg("failed to record report run")
			}
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info().
		Str("source_file", rep.SourceFile).
		Int("records", len(records)).
		Int("rows", len(rows)).
		Float64("total_revenue", metrics.TotalRevenue).
		Int("cached_documents", s.store.Len()).
		Msg("report generated")

	return res, nil
}

// guard turns a panic inside an errgroup task into an error, since the
// request's recovery middleware only sees its own goroutine.
func guard(task string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v", task, r)
			}
		}()
		return fn()
	}
}

func (s *reportService) PDF(id string) ([]byte, error) {
	doc, ok := s.store.Get(id)
	if !ok {
		return nil, ErrReportNotFound
	}
	return doc, nil
}

func (s *reportService) Runs(ctx context.Context, limit int) ([]models.ReportRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.ListRuns(ctx, limit)
}

func (s *reportService) Run(ctx context.Context, id string) (*models.ReportRun, error) {
	if s.runs == nil {
		return nil, ErrHistoryDisabled
	}
	return s.runs.GetRun(ctx, id)
}
