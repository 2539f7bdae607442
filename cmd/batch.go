package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/guttosm/permitpulse/config"
	"github.com/guttosm/permitpulse/internal/app"
	"github.com/guttosm/permitpulse/internal/batch"
	"github.com/guttosm/permitpulse/internal/domain/models"
	"github.com/guttosm/permitpulse/internal/storage"
)

func newBatchCmd() *cobra.Command {
	var (
		opts       batch.Options
		start, end string
		record     bool
	)

	cmd := &cobra.Command{
		Use:     "batch",
		Short:   "Generate a PDF report for every spreadsheet in a directory",
		Example: "  permitpulse batch --dir ./data/input --out-dir ./data/reports --start 2024-01-01 --end 2024-01-31",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			e, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			opts.Range = models.NewDateRange(s, e)

			cfg := config.AppConfig
			var runs storage.RunsRepository
			if record {
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

			outputs, err := batch.Run(cmd.Context(), svc, opts)
			if err != nil {
				return err
			}
			for _, o := range outputs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", o.ReportID, o.PDF, o.Metrics.PermitsIssued)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Dir, "dir", "./data/input", "Directory with .xlsx, .xlsm or .csv files")
	f.StringVar(&opts.OutDir, "out-dir", "", "Directory for the PDFs (default --dir)")
	f.IntVar(&opts.Parallel, "parallel", 0, "How many files to process concurrently (0=auto up to CPU, max 8)")
	f.StringVar(&start, "start", "", "Start date, YYYY-MM-DD")
	f.StringVar(&end, "end", "", "End date, YYYY-MM-DD")
	f.BoolVar(&record, "record", false, "Record each run in the report history database")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
