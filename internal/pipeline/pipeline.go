// Package pipeline wires the analysis stages together: load, clean,
// metrics, segmentation, insights, charts and export. A run either fails
// before producing any artifact (load, clean, fatal export errors) or
// completes with a summary listing what was written and what was skipped.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"salescli/internal/chart"
	"salescli/internal/cleaner"
	"salescli/internal/config"
	"salescli/internal/errors"
	"salescli/internal/exporter"
	"salescli/internal/infrastructure"
	"salescli/internal/insight"
	"salescli/internal/loader"
	"salescli/internal/metrics"
	"salescli/internal/segment"
	"salescli/pkg/contracts/domain"
)

// Summary is the outcome of a completed run.
type Summary struct {
	RunID    string             `json:"run_id"`
	Source   string             `json:"source"`
	Records  int                `json:"records"`
	Drops    cleaner.DropReport `json:"drops"`
	Metrics  domain.MetricSet   `json:"metrics"`
	Insights []domain.Insight   `json:"insights"`
	Written  []string           `json:"written"`
	Skipped  []exporter.Skip    `json:"skipped"`
	Duration time.Duration      `json:"duration"`
}

// Runner executes the analysis pipeline for one input file.
type Runner struct {
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
}

// New creates a runner. A nil logger falls back to slog.Default.
func New(cfg *config.Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		paths:  config.NewPaths(cfg.Output.Dir),
		logger: logger,
	}
}

// Paths exposes the output layout the runner writes into.
func (r *Runner) Paths() *config.Paths {
	return r.paths
}

// RunAdvanced executes the full pipeline: all segment dimensions, the
// insight rules, the chart set and every enabled export format. Chart and
// per-artifact export failures are recorded in the summary; the run still
// completes.
func (r *Runner) RunAdvanced(ctx context.Context) (*Summary, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	ds, drops, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	ms := r.computeMetrics(ctx, ds)
	tables, crossTab := r.segmentStage(ctx, ds)
	insights := r.insightStage(ctx, ms, tables)

	if err := r.paths.EnsureOutputDir(); err != nil {
		return nil, errors.NewExportError("output directory unavailable", err)
	}

	renderer := chart.NewRenderer(r.logger)
	renderReport := renderer.RenderAll(ctx, ms, tables, crossTab, r.paths)

	exp := exporter.New(r.paths, r.cfg.Output.Formats, r.logger)
	exportReport, err := exp.Export(ctx, exporter.Input{
		RunID:          infrastructure.GetRunID(ctx),
		Dataset:        ds,
		Drops:          drops,
		Metrics:        ms,
		Tables:         tables,
		Insights:       insights,
		ChartsRendered: renderReport.Rendered,
		ChartsSkipped:  convertSkips(renderReport.Skipped),
	})
	if err != nil {
		return nil, err
	}

	summary := r.summarize(ctx, ds, drops, ms, insights, start)
	summary.Written = append(renderReport.Rendered, exportReport.Written...)
	summary.Skipped = append(convertSkips(renderReport.Skipped), exportReport.Skipped...)
	return summary, nil
}

// RunBasic executes the reduced pipeline: summary metrics, the product
// segmentation, the processed dataset CSV and the product revenue chart.
func (r *Runner) RunBasic(ctx context.Context) (*Summary, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	start := time.Now()

	ds, drops, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	ms := r.computeMetrics(ctx, ds)

	productTable, err := segment.ByDimension(ds, domain.DimensionProduct)
	if err != nil {
		return nil, err
	}

	var skipped []exporter.Skip
	var rendered []string
	if err := r.paths.EnsureOutputDir(); err != nil {
		return nil, errors.NewExportError("output directory unavailable", err)
	}
	chartPath := r.paths.ChartFile(chart.ChartRevenueByProduct)
	if err := chart.NewRenderer(r.logger).RevenueBarChart(productTable, chartPath); err != nil {
		r.logger.WarnContext(ctx, "chart skipped",
			slog.String("chart", chart.ChartRevenueByProduct),
			slog.String("error", err.Error()))
		skipped = append(skipped, exporter.Skip{Name: chart.ChartRevenueByProduct, Reason: err.Error()})
	} else {
		rendered = append(rendered, chartPath)
	}

	exp := exporter.New(r.paths, []string{exporter.FormatCSV}, r.logger)
	exportReport, err := exp.Export(ctx, exporter.Input{
		RunID:          infrastructure.GetRunID(ctx),
		Dataset:        ds,
		Drops:          drops,
		Metrics:        ms,
		Tables:         []*domain.SegmentTable{productTable},
		ChartsRendered: rendered,
		ChartsSkipped:  skipped,
	})
	if err != nil {
		return nil, err
	}

	summary := r.summarize(ctx, ds, drops, ms, nil, start)
	summary.Written = append(rendered, exportReport.Written...)
	summary.Skipped = append(skipped, exportReport.Skipped...)
	return summary, nil
}

// prepare runs the load and clean stages. Errors here abort the run
// before any file is written.
func (r *Runner) prepare(ctx context.Context) (*domain.Dataset, cleaner.DropReport, error) {
	stageStart := time.Now()
	raw, err := loader.New(r.logger).Load(ctx, r.cfg.Input.Path)
	if err != nil {
		return nil, cleaner.DropReport{}, err
	}
	r.logStage(ctx, "load", stageStart, slog.Int("rows", len(raw.Rows)))

	stageStart = time.Now()
	ds, drops, err := cleaner.New(r.logger).Clean(ctx, raw)
	if err != nil {
		return nil, drops, err
	}
	r.logStage(ctx, "clean", stageStart,
		slog.Int("rows_in", drops.RowsIn),
		slog.Int("rows_out", drops.RowsOut))

	return ds, drops, nil
}

func (r *Runner) computeMetrics(ctx context.Context, ds *domain.Dataset) domain.MetricSet {
	stageStart := time.Now()
	ms := metrics.Compute(ds, metrics.Options{
		GrowthBucket: metrics.BucketPolicy(r.cfg.Analysis.GrowthBucket),
	})
	r.logStage(ctx, "metrics", stageStart, slog.Int("metrics", len(ms.Values)))
	return ms
}

func (r *Runner) segmentStage(ctx context.Context, ds *domain.Dataset) ([]*domain.SegmentTable, *domain.CrossTab) {
	stageStart := time.Now()
	tables := segment.All(ds)
	crossTab := segment.CrossTab(ds)
	r.logStage(ctx, "segment", stageStart, slog.Int("tables", len(tables)))
	return tables, crossTab
}

func (r *Runner) insightStage(ctx context.Context, ms domain.MetricSet, tables []*domain.SegmentTable) []domain.Insight {
	stageStart := time.Now()
	insights := insight.Generate(ms, tables, insight.Config{
		ConcentrationThreshold: r.cfg.Analysis.ConcentrationThreshold,
		OutlierStdDevs:         r.cfg.Analysis.OutlierStdDevs,
		CorrelationMin:         r.cfg.Analysis.CorrelationMin,
	})
	r.logStage(ctx, "insights", stageStart, slog.Int("insights", len(insights)))
	return insights
}

func (r *Runner) summarize(ctx context.Context, ds *domain.Dataset, drops cleaner.DropReport, ms domain.MetricSet, insights []domain.Insight, start time.Time) *Summary {
	summary := &Summary{
		RunID:    infrastructure.GetRunID(ctx),
		Source:   ds.Source,
		Records:  ds.Len(),
		Drops:    drops,
		Metrics:  ms,
		Insights: insights,
		Duration: time.Since(start),
	}
	r.logger.InfoContext(ctx, "pipeline complete",
		slog.Int("records", summary.Records),
		slog.Duration("duration", summary.Duration))
	return summary
}

func (r *Runner) logStage(ctx context.Context, stage string, start time.Time, attrs ...any) {
	args := append([]any{
		slog.String("stage", stage),
		slog.Duration("duration", time.Since(start)),
	}, attrs...)
	r.logger.InfoContext(ctx, "stage complete", args...)
}

func convertSkips(skips []chart.Skip) []exporter.Skip {
	out := make([]exporter.Skip, 0, len(skips))
	for _, s := range skips {
		out = append(out, exporter.Skip{Name: s.Name, Reason: s.Reason})
	}
	return out
}
