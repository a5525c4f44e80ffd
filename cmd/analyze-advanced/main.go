// Command analyze-advanced runs the full sales analysis pipeline: every
// segmentation dimension, the insight rules, the chart set, the interactive
// dashboard and all enabled export formats.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"salescli/internal/config"
	"salescli/internal/infrastructure"
	"salescli/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "path to the sales CSV (overrides config)")
	output := flag.String("output", "", "output directory (overrides config)")
	formats := flag.String("format", "", "comma-separated export formats: csv,xlsx,report (overrides config)")
	growthBucket := flag.String("growth-bucket", "", "growth bucketing policy: auto, daily or weekly (overrides config)")
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
	if *formats != "" {
		cfg.Output.Formats = splitFormats(*formats)
	}
	if *growthBucket != "" {
		cfg.Analysis.GrowthBucket = *growthBucket
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.EnsureRunID(context.Background())
	logger.InfoContext(ctx, "Starting advanced sales analysis",
		slog.String("input", cfg.Input.Path),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("formats", strings.Join(cfg.Output.Formats, ",")),
		slog.String("growth_bucket", cfg.Analysis.GrowthBucket))

	summary, err := pipeline.New(cfg, logger).RunAdvanced(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Analysis failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Analyzed %d records from %s in %s\n", summary.Records, summary.Source, summary.Duration.Round(time.Millisecond))
	for _, ins := range summary.Insights {
		fmt.Printf("[%s] %s\n", ins.Severity, ins.Message)
	}
	fmt.Printf("Wrote %d artifacts to %s\n", len(summary.Written), cfg.Output.Dir)
	for _, skip := range summary.Skipped {
		fmt.Printf("Skipped %s: %s\n", skip.Name, skip.Reason)
	}
}

func splitFormats(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
