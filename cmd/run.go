package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/homepage-finder/internal/config"
	"github.com/sells-group/homepage-finder/internal/finder"
	"github.com/sells-group/homepage-finder/internal/model"
	"github.com/sells-group/homepage-finder/internal/monitoring"
	"github.com/sells-group/homepage-finder/internal/sheet"
)

var (
	runInput       string
	runOutput      string
	runLimit       int
	runConcurrency int
	runStore       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find homepages for every company in a spreadsheet",
	Long: `Reads companies from an XLSX or CSV file, searches and scores candidates for
each one, and writes the chosen URL, score, judgment, query and timestamp.

Examples:
  # Annotate the input workbook in place of columns E..I
  hpfinder run --input companies.xlsx --output results.xlsx

  # Shift_JIS CSV in, UTF-8 CSV out, first 10 companies only
  HPFINDER_SHEET_ENCODING=shift_jis hpfinder run --input companies.csv --output results.csv --limit 10`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if runConcurrency > 0 {
			cfg.Batch.MaxConcurrentCompanies = runConcurrency
		}
		if runStore != "" {
			cfg.Store.Driver = runStore
		}
		limit := cfg.Batch.Limit
		if runLimit > 0 {
			limit = runLimit
		}

		companies, err := readCompanies(runInput, cfg.Sheet)
		if err != nil {
			return err
		}
		if limit > 0 && limit < len(companies) {
			companies = companies[:limit]
		}
		if len(companies) == 0 {
			zap.L().Info("no companies to process", zap.String("input", runInput))
			return nil
		}

		env, err := initEnv(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		run, results, summary, runErr := env.Finder.Run(ctx, filepath.Base(runInput), companies)
		if run != nil {
			notifyRun(context.WithoutCancel(ctx), cfg.Monitoring, run, summary)
		}
		if len(results) > 0 {
			if err := writeResults(runInput, runOutput, cfg.Sheet, results, os.Stdout); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}
		zap.L().Info("run finished", zap.String("run_id", run.ID), zap.Int("results", len(results)))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "input companies file (.xlsx or .csv)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output file (.xlsx or .csv); prints a table when empty")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max number of companies to process (0 = all)")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "companies processed in parallel (default from config)")
	runCmd.Flags().StringVar(&runStore, "store", "", "store driver override: sqlite, postgres or none")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

// notifyRun evaluates the finished run and posts any alerts to the webhook.
func notifyRun(ctx context.Context, mc config.MonitoringConfig, run *model.Run, summary finder.Summary) {
	alerter := monitoring.NewAlerter(mc)
	alerts := alerter.Evaluate(run, summary)
	for _, a := range alerts {
		zap.L().Warn("run alert", zap.String("type", string(a.Type)), zap.String("message", a.Message))
	}
	alerter.SendAlerts(ctx, alerts)
}

func sheetOptions(sc config.SheetConfig) sheet.XLSXOptions {
	return sheet.XLSXOptions{
		SheetName:  sc.SheetName,
		SheetIndex: sc.SheetIndex,
		Layout: sheet.Layout{
			StartRow:      sc.StartRow,
			IDCol:         sc.IDCol,
			PrefectureCol: sc.PrefectureCol,
			IndustryCol:   sc.IndustryCol,
			NameCol:       sc.NameCol,
			OutputCol:     sc.OutputCol,
		},
	}
}

func readCompanies(path string, sc config.SheetConfig) ([]model.CompanyRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return sheet.ReadCompaniesXLSX(path, sheetOptions(sc))
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "open input")
		}
		defer f.Close() //nolint:errcheck
		return sheet.ReadCompaniesCSV(f, sc.Encoding)
	default:
		return nil, eris.Errorf("unsupported input format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

// writeResults writes to output by extension. An XLSX input written to an
// XLSX output is annotated in place of its output columns; with no output
// path a table goes to stdout.
func writeResults(input, output string, sc config.SheetConfig, results []model.Result, stdout io.Writer) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case "":
		formatResults(stdout, results)
		return nil
	case ".xlsx":
		if strings.EqualFold(filepath.Ext(input), ".xlsx") {
			return sheet.AnnotateXLSX(input, output, sheetOptions(sc), results)
		}
		return sheet.WriteResultsXLSX(output, results)
	case ".csv":
		f, err := os.Create(output)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		if err := sheet.WriteResultsCSV(f, results); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		return eris.Wrap(f.Close(), "close output")
	default:
		return eris.Errorf("unsupported output format %q (want .xlsx or .csv)", filepath.Ext(output))
	}
}

func formatResults(out io.Writer, results []model.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tSTATUS\tSCORE\tQUERY\tURL")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-----\t-----\t---")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.CompanyID,
			truncate(r.CompanyName, 30),
			r.Status,
			r.Score,
			r.QueryLabel,
			r.URL,
		)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
