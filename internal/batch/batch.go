// Package batch generates one PDF report per spreadsheet found in a directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/service"
)

const maxParallel = 8

// ErrNoInput is returned when the directory holds no supported spreadsheet.
var ErrNoInput = errors.New("no spreadsheets found")

// Generator is the part of service.ReportService a batch run needs.
type Generator interface {
	Generate(ctx context.Context, req service.GenerateRequest) (*service.Result, error)
}

// Options configures a batch run.
//
// Fields:
//   - Dir: directory scanned (non-recursively) for .xlsx, .xlsm and .csv files.
//   - OutDir: where "<name>.pdf" is written for each input; defaults to Dir.
//   - Range: reporting range applied to every file.
//   - Parallel: files processed concurrently; 0 means min(8, NumCPU).
type Options struct {
	Dir      string
	OutDir   string
	Range    models.DateRange
	Parallel int
}

// Output describes one written report.
type Output struct {
	Source   string
	PDF      string
	ReportID string
	Metrics  models.Metrics
}

// Run generates every report under opts.Dir. The first failure cancels the
// remaining files and is returned; outputs already written stay on disk.
func Run(ctx context.Context, gen Generator, opts Options) ([]Output, error) {
	files, err := spreadsheets(opts.Dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInput, opts.Dir)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = opts.Dir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	limit := parallelism(opts.Parallel)
	logger.L().Info().Int("files", len(files)).Str("dir", opts.Dir).Int("max_parallel", limit).Msg("batch start")

	outputs := make([]Output, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, f := range files {
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(f)

			out, err := generateOne(gctx, gen, f, outDir, opts.Range)
			if err != nil {
				logger.L().Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", base, err)
			}
			outputs[i] = out
			logger.L().Info().
				Int("idx", i+1).
				Int("total", len(files)).
				Str("file", base).
				Int("permits_issued", out.Metrics.PermitsIssued).
				Dur("elapsed", time.Since(start)).
				Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func generateOne(ctx context.Context, gen Generator, path, outDir string, r models.DateRange) (Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return Output{}, err
	}
	defer func() { _ = f.Close() }()

	res, err := gen.Generate(ctx, service.GenerateRequest{
		Filename:  filepath.Base(path),
		Content:   f,
		Range:     r,
		RenderPDF: true,
	})
	if err != nil {
		return Output{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".pdf"
	target := filepath.Join(outDir, name)
	if err := os.WriteFile(target, res.PDF, 0o644); err != nil {
		return Output{}, fmt.Errorf("write pdf: %w", err)
	}

	return Output{Source: path, PDF: target, ReportID: res.Report.ID, Metrics: res.Report.Metrics}, nil
}

// spreadsheets lists supported files in dir, sorted by name.
func spreadsheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".xlsm", ".csv":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func parallelism(n int) int {
	if n > 0 {
		return min(n, maxParallel)
	}
	return min(runtime.NumCPU(), maxParallel)
}
