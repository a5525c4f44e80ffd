// Command analyze runs the reduced sales analysis: summary metrics, the
// per-product revenue breakdown, the processed dataset CSV and the product
// revenue chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"salescli/internal/config"
	"salescli/internal/infrastructure"
	"salescli/internal/pipeline"
	"salescli/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "path to the sales CSV (overrides config)")
	output := flag.String("output", "", "output directory (overrides config)")
	configFile := flag.String("config", config.DefaultConfigFile, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadFrom(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input.Path = *input
	}
	if *output != "" {
		cfg.Output.Dir = *output
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(context.Background())
	logger.InfoContext(ctx, "Starting sales analysis",
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir))

	summary, err := pipeline.New(cfg, logger).RunBasic(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printSummary(summary)
}

// printSummary writes the key results to stdout.
func printSummary(s *pipeline.Summary) {
	fmt.Printf("Analyzed %d records from %s\n", s.Records, s.Source)
	if dropped := s.Drops.Dropped(); dropped > 0 {
		fmt.Printf("Dropped %d invalid rows\n", dropped)
	}
	printMetric(s, domain.MetricTotalRevenue, "Total revenue")
	printMetric(s, domain.MetricTransactionCount, "Transactions")
	printMetric(s, domain.MetricAverageTicket, "Average ticket")
	printMetric(s, domain.MetricPeriodGrowth, "Period growth %")
	fmt.Printf("Wrote %d artifacts to disk\n", len(s.Written))
	for _, skip := range s.Skipped {
		fmt.Printf("Skipped %s: %s\n", skip.Name, skip.Reason)
	}
}

func printMetric(s *pipeline.Summary, name, label string) {
	v, ok := s.Metrics.Get(name)
	if !ok || math.IsNaN(v) {
		return
	}
	fmt.Printf("%s: %.2f\n", label, v)
}
