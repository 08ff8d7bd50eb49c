package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"enrolpulse/internal/config"
	"enrolpulse/internal/dataset"
	"enrolpulse/internal/exporter"
	"enrolpulse/internal/forecast"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/internal/middleware"
	"enrolpulse/internal/services"
	"enrolpulse/internal/validation"
	"enrolpulse/pkg/contracts/domain"
)

// options are the command line flags
type options struct {
	file     string
	state    string
	district string
	level    string
	horizon  int
	out      string
	export   bool
	format   string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.NewLogger(os.Stderr, cfg.Logging.Level)

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, opts, os.Stdout, logger); err != nil {
		logger.Error("Enrolment report failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("enrolment-report", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.file, "file", "", "enrolment CSV or XLSX file (defaults to the configured dataset)")
	fs.StringVar(&opts.state, "state", "", "state to report on (defaults to the first state)")
	fs.StringVar(&opts.district, "district", "", "district for the deep dive (defaults to the first district)")
	fs.StringVar(&opts.level, "level", "state", "forecast level: state or district")
	fs.IntVar(&opts.horizon, "horizon", 0, "forecast horizon in days (defaults to the configured horizon)")
	fs.StringVar(&opts.out, "out", "", "directory to write the ranking, trend and forecast exports to")
	fs.BoolVar(&opts.export, "export", false, "write exports to the configured exports directory when -out is not set")
	fs.StringVar(&opts.format, "format", "csv", "export format: csv or xlsx")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, stdout io.Writer, logger *slog.Logger) error {
	path := opts.file
	if path == "" {
		path = cfg.GetDatasetPath()
	}

	if opts.out == "" && opts.export {
		opts.out = cfg.GetExportsDir()
	}

	files := validation.NewFileValidator(logger)
	var format exporter.Format
	if opts.out != "" {
		f, err := exporter.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		if err := files.ValidateOutputDirectory(opts.out); err != nil {
			return err
		}
		format = f
	}
	if err := files.ValidateDatasetFile(path); err != nil {
		return err
	}

	q := services.DashboardQuery{
		State:    strings.TrimSpace(opts.state),
		District: strings.TrimSpace(opts.district),
		Level:    strings.ToLower(strings.TrimSpace(opts.level)),
		Horizon:  opts.horizon,
	}
	if err := middleware.NewRequestValidator(logger).ValidateStruct(q); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}

	loader := dataset.NewLoader(dataset.OptionsFromConfig(cfg.Dataset), logger)
	cache := dataset.NewCache(loader, path, nil, logger)
	svc := services.NewDashboardService(cache, forecast.FromConfig(cfg.Forecast), cfg.Forecast.DefaultHorizon, nil, logger)

	logger.Info("Loading enrolment data", "path", path)
	view, err := svc.View(ctx, q, services.ChannelCLI)
	if err != nil {
		return err
	}

	if info, ok := cache.Info(); ok {
		logger.Info("Loaded enrolment data",
			"records", info.Records,
			"dropped", info.Dropped,
			"states", info.States)
	}

	printReport(stdout, view)

	if opts.out == "" {
		return nil
	}

	paths, err := writeExports(exporter.NewFileWriter(opts.out, logger), format, view)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\n=== EXPORTS ===")
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

// writeExports writes one file per table for CSV and a single workbook for XLSX
func writeExports(w *exporter.FileWriter, format exporter.Format, view domain.DashboardView) ([]string, error) {
	sel := view.Selection
	districts := exporter.DistrictTable(sel.State, view.Breakdown)
	trend := exporter.TrendTable(sel, view.Trend)

	if format == exporter.FormatXLSX {
		tables := []exporter.Table{districts, trend}
		if view.Forecast != nil {
			tables = append(tables, exporter.ForecastTable(*view.Forecast))
		}
		p, err := w.WriteFile(exporter.Filename("report", format, sel.State, sel.District), format, tables...)
		if err != nil {
			return nil, err
		}
		return []string{p}, nil
	}

	files := []struct {
		name  string
		table exporter.Table
	}{
		{exporter.Filename("districts", format, sel.State), districts},
		{exporter.Filename("trend", format, sel.State, sel.District), trend},
	}
	if fc := view.Forecast; fc != nil {
		parts := []string{sel.State}
		if fc.Level == domain.ForecastLevelDistrict {
			parts = append(parts, sel.District)
		}
		files = append(files, struct {
			name  string
			table exporter.Table
		}{exporter.Filename("forecast", format, parts...), exporter.ForecastTable(*fc)})
	}

	var paths []string
	for _, f := range files {
		p, err := w.WriteFile(f.name, format, f.table)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func printReport(w io.Writer, view domain.DashboardView) {
	ov := view.Overview
	fmt.Fprintf(w, "=== ENROLMENT OVERVIEW: %s ===\n", ov.State)
	fmt.Fprintf(w, "Records:   %d\n", ov.Records)
	printTotals(w, ov.Totals)

	fmt.Fprintln(w, "\n=== DISTRICT RANKING ===")
	fmt.Fprintln(w, "Rank | District                 |   Age 5-17 |    Age 18+ |      Total")
	fmt.Fprintln(w, "-----|--------------------------|------------|------------|-----------")
	for i, d := range view.Breakdown {
		fmt.Fprintf(w, "%4d | %-24s | %10d | %10d | %10d\n",
			i+1, d.District, d.Age5To17, d.Age18Plus, d.Total)
	}

	dd := view.DeepDive
	fmt.Fprintf(w, "\n=== DISTRICT DEEP DIVE: %s, %s ===\n", dd.Region.District, dd.Region.State)
	fmt.Fprintf(w, "Records:   %d\n", dd.Records)
	printTotals(w, dd.Totals)

	fc := view.Forecast
	if fc == nil {
		fmt.Fprintln(w, "\nForecast unavailable: not enough daily history")
		return
	}
	fmt.Fprintf(w, "\n=== %d-DAY FORECAST: %s (%s level) ===\n", len(fc.Points), fc.Region, fc.Level)
	fmt.Fprintf(w, "Trailing %d-day mean over %d observations: %.2f\n", fc.Window, fc.Observations, fc.TrailingMean)
	fmt.Fprintf(w, "Expected activity for the next %d days: approximately %d per day\n", len(fc.Points), fc.DailyEstimate)
	if fc.Partial {
		fmt.Fprintln(w, "Note: fewer observations than the window, mean covers the available days")
	}
	for _, p := range fc.Points {
		fmt.Fprintf(w, "%s | %10.2f\n", p.Date.Format("2006-01-02"), p.Value)
	}
}

func printTotals(w io.Writer, t domain.AgeGroupTotals) {
	fmt.Fprintf(w, "Age 5-17:  %d\n", t.Age5To17)
	fmt.Fprintf(w, "Age 18+:   %d\n", t.Age18Plus)
	fmt.Fprintf(w, "Total:     %d\n", t.Total)
}
