// Package chart renders the static chart images and the interactive
// dashboard. Every artifact renders independently: a failed chart is
// logged and skipped, never aborting the run.
package chart

import (
	"context"
	"image/color"
	"log/slog"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"salescli/internal/config"
	"salescli/pkg/contracts/domain"
)

// Static chart artifact names (extension added by Paths.ChartFile).
const (
	ChartRevenueByProduct = "revenue_by_product"
	ChartRevenueOverTime  = "revenue_over_time"
	ChartRegionShare      = "region_share"
)

// DashboardArtifact names the interactive dashboard in render reports.
const DashboardArtifact = "dashboard"

// maxBarSegments caps how many segments a bar chart shows; the segment
// tables are revenue-ordered, so the cap keeps the biggest groups.
const maxBarSegments = 20

// Skip records one artifact that could not be rendered.
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// RenderReport summarizes which chart artifacts were produced.
type RenderReport struct {
	Rendered []string `json:"rendered"`
	Skipped  []Skip   `json:"skipped"`
}

// Renderer draws charts from the computed aggregates.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a renderer. A nil logger falls back to slog.Default.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// RenderAll draws the full chart set. Failures are recorded per artifact
// and the remaining charts still render.
func (r *Renderer) RenderAll(ctx context.Context, ms domain.MetricSet, tables []*domain.SegmentTable, crossTab *domain.CrossTab, paths *config.Paths) RenderReport {
	var report RenderReport

	render := func(name, path string, fn func() error) {
		if err := fn(); err != nil {
			r.logger.WarnContext(ctx, "chart skipped",
				slog.String("chart", name),
				slog.String("error", err.Error()))
			report.Skipped = append(report.Skipped, Skip{Name: name, Reason: err.Error()})
			return
		}
		r.logger.InfoContext(ctx, "chart rendered",
			slog.String("chart", name),
			slog.String("path", path))
		report.Rendered = append(report.Rendered, path)
	}

	productPath := paths.ChartFile(ChartRevenueByProduct)
	render(ChartRevenueByProduct, productPath, func() error {
		return r.RevenueBarChart(findTable(tables, domain.DimensionProduct), productPath)
	})

	timePath := paths.ChartFile(ChartRevenueOverTime)
	render(ChartRevenueOverTime, timePath, func() error {
		return r.RevenueOverTimeChart(findTable(tables, domain.DimensionTimeBucket), timePath)
	})

	regionPath := paths.ChartFile(ChartRegionShare)
	render(ChartRegionShare, regionPath, func() error {
		return r.RegionShareChart(findTable(tables, domain.DimensionRegion), regionPath)
	})

	render(DashboardArtifact, paths.DashboardFile, func() error {
		return r.Dashboard(ms, tables, crossTab, paths.DashboardFile)
	})

	return report
}

// RevenueBarChart draws revenue per product as a vertical bar chart.
func (r *Renderer) RevenueBarChart(table *domain.SegmentTable, path string) error {
	rows, err := chartRows(table)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Revenue by Product"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Revenue"

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.Revenue
		names[i] = row.Key
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 79, G: 129, B: 189, A: 255}

	p.Add(bars)
	p.NominalX(names...)

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// RevenueOverTimeChart draws the bucketed revenue series as a line chart.
func (r *Renderer) RevenueOverTimeChart(table *domain.SegmentTable, path string) error {
	rows, err := chartRows(table)
	if err != nil {
		return err
	}
	// segment tables come revenue-ordered; the series wants time order
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	p := plot.New()
	p.Title.Text = "Revenue Over Time"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Revenue"

	points := make(plotter.XYs, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		points[i].X = float64(i)
		points[i].Y = row.Revenue
		names[i] = row.Key
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Width = vg.Points(2)
	line.Color = color.RGBA{R: 192, G: 80, B: 77, A: 255}

	p.Add(line, plotter.NewGrid())
	p.NominalX(names...)

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// RegionShareChart draws each region's revenue share as horizontal bars.
func (r *Renderer) RegionShareChart(table *domain.SegmentTable, path string) error {
	rows, err := chartRows(table)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Revenue Share by Region"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Share of total revenue (%)"

	values := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.RevenueShare * 100
		names[i] = row.Key
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Horizontal = true
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 155, G: 187, B: 89, A: 255}

	p.Add(bars)
	p.NominalY(names...)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// chartRows validates a table for charting and caps it to the largest
// segments.
func chartRows(table *domain.SegmentTable) ([]domain.SegmentRow, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, errNoData
	}
	rows := make([]domain.SegmentRow, len(table.Rows))
	copy(rows, table.Rows)
	if len(rows) > maxBarSegments {
		rows = rows[:maxBarSegments]
	}
	return rows, nil
}

func findTable(tables []*domain.SegmentTable, dim domain.Dimension) *domain.SegmentTable {
	for _, table := range tables {
		if table.Dimension == dim {
			return table
		}
	}
	return nil
}
