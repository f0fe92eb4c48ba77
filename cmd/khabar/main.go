package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/khabar"
	"github.com/pevans/khabar/config"
	"github.com/pevans/khabar/logging"
	"github.com/pevans/khabar/metrics"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config", getEnv("KHABAR_CONFIG", ""), "Path to YAML config file (KHABAR_CONFIG)")
	showProgress := flag.Bool("progress", false, "Draw a progress bar on stderr while scraping")
	flag.Parse()

	os.Exit(run(*configPath, *showProgress))
}

func run(configPath string, showProgress bool) int {
	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration:\n%v\n", err)
		return 1
	}

	logger := logging.Init(os.Stderr, cfg.Logging.Level)
	logger.Info("starting onlinekhabar harvester", "months", cfg.Run.Months, "articles_per_month", cfg.Run.ArticlesPerMonth)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	opts := []khabar.Option{khabar.WithLogger(logger), khabar.WithMetrics(m)}
	if showProgress {
		opts = append(opts, khabar.WithProgress(os.Stderr))
	}

	harvester, err := khabar.New(&cfg.Scraper, opts...)
	if err != nil {
		logger.Error("failed to create harvester", "error", err)
		return 1
	}

	records, err := harvester.ScrapeLastMonths(ctx, cfg.Run.Months, cfg.Run.ArticlesPerMonth)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Warn("interrupted, saving articles scraped so far", "articles", len(records))
	default:
		logger.Error("scraping failed", "error", err)
		return 1
	}

	if err := harvester.Save(cfg.Output.Path, records); err != nil {
		return 1
	}

	exportOutputs(harvester, m, cfg.Output, logger)

	printSummary(os.Stdout, harvester.Stats(), cfg.Output.Path)

	if ctx.Err() != nil {
		return 130
	}
	return 0
}

// exportOutputs writes the optional sqlite export and metrics textfile.
// Failures are logged; the JSON archive is already saved.
func exportOutputs(harvester *khabar.Harvester, m *metrics.Collector, out config.OutputConfig, logger *slog.Logger) {
	if out.SQLitePath != "" {
		// errors are logged by the harvester
		_ = harvester.ExportSQLite(out.SQLitePath)
	}

	if out.MetricsPath != "" {
		if err := m.WriteTextfile(out.MetricsPath); err != nil {
			logger.Error("failed to write metrics", "path", out.MetricsPath, "error", err)
		}
	}
}
