package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/guttosm/permitpulse/config"
	"github.com/guttosm/permitpulse/internal/app"
	"github.com/guttosm/permitpulse/internal/domain/dto"
	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/logger"
	"github.com/guttosm/permitpulse/internal/render"
	"github.com/guttosm/permitpulse/internal/service"
	"github.com/guttosm/permitpulse/internal/storage"
)

type reportOptions struct {
	file   string
	start  string
	end    string
	out    string
	format string
	record bool
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a transaction report from a local spreadsheet",
		Example: "  permitpulse report --file transactions.xlsx --start 2024-01-01 --end 2024-01-31\n" +
			"  permitpulse report --file tx.csv --start 2024-01-01 --end 2024-01-31 --format json --out -",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.file, "file", "", "Spreadsheet to read (.xlsx, .xlsm or .csv)")
	f.StringVar(&opts.start, "start", "", "Start date, YYYY-MM-DD")
	f.StringVar(&opts.end, "end", "", "End date, YYYY-MM-DD")
	f.StringVar(&opts.out, "out", "", `Output path, "-" for stdout (default transactions_report-<id>.<format>)`)
	f.StringVar(&opts.format, "format", "pdf", "Output format: pdf, html or json")
	f.BoolVar(&opts.record, "record", false, "Record the run in the report history database")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runReport(cmd *cobra.Command, opts reportOptions) error {
	switch opts.format {
	case "pdf", "html", "json":
	default:
		return fmt.Errorf("unknown format %q, want pdf, html or json", opts.format)
	}

	start, err := time.Parse("2006-01-02", opts.start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", opts.end)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	cfg := config.AppConfig

	var runs storage.RunsRepository
	if opts.record {
		repo, closeFn, err := app.OpenRunsRepository(cfg)
		if err != nil {
			return err
		}
		defer closeFn()
		runs = repo
	}

	svc, err := app.NewReportService(cfg, runs)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	res, err := svc.Generate(cmd.Context(), service.GenerateRequest{
		Filename:  filepath.Base(opts.file),
		Content:   in,
		Range:     models.NewDateRange(start, end),
		RenderPDF: opts.format == "pdf",
	})
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = fmt.Sprintf("transactions_report-%s.%s", res.Report.ID, opts.format)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := writeReport(w, opts.format, res, app.Branding(cfg.Report)); err != nil {
		return err
	}

	logger.L().Info().
		Str("report_id", res.Report.ID).
		Str("out", out).
		Int("permits_issued", res.Report.Metrics.PermitsIssued).
		Msg("report written")
	return nil
}

func writeReport(w io.Writer, format string, res *service.Result, b render.Branding) error {
	switch format {
	case "pdf":
		_, err := w.Write(res.PDF)
		return err
	case "html":
		return render.WriteHTML(w, render.NewReportView(b, res.Report, ""))
	default:
		resp := dto.NewReportResponse(res.Report)
		resp.PDFURL = ""
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
}
