package chart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/config"
	"salescli/pkg/contracts/domain"
)

func testTables() []*domain.SegmentTable {
	return []*domain.SegmentTable{
		{
			Dimension: domain.DimensionProduct,
			Rows: []domain.SegmentRow{
				{Key: "A", Revenue: 80, RevenueShare: 0.8},
				{Key: "B", Revenue: 20, RevenueShare: 0.2},
			},
			TotalRevenue: 100,
		},
		{
			Dimension: domain.DimensionRegion,
			Rows: []domain.SegmentRow{
				{Key: "North", Revenue: 60, RevenueShare: 0.6},
				{Key: "South", Revenue: 40, RevenueShare: 0.4},
			},
			TotalRevenue: 100,
		},
		{
			Dimension: domain.DimensionTimeBucket,
			Rows: []domain.SegmentRow{
				{Key: "2024-02", Revenue: 70, RevenueShare: 0.7},
				{Key: "2024-01", Revenue: 30, RevenueShare: 0.3},
			},
			TotalRevenue: 100,
		},
	}
}

func testCrossTab() *domain.CrossTab {
	return &domain.CrossTab{
		Products: []string{"A", "B"},
		Regions:  []string{"North", "South"},
		Revenue:  [][]float64{{50, 30}, {10, 10}},
	}
}

func emptyMetricSet() domain.MetricSet {
	return domain.MetricSet{Values: map[string]float64{}, Notes: map[string]string{}}
}

func TestRenderAll(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureOutputDir())

	r := NewRenderer(nil)
	report := r.RenderAll(context.Background(), emptyMetricSet(), testTables(), testCrossTab(), paths)

	assert.Empty(t, report.Skipped)
	require.Len(t, report.Rendered, 4)
	for _, path := range report.Rendered {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestRenderAll_PartialFailure(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureOutputDir())
	// make the dashboard path unwritable by turning it into a directory
	require.NoError(t, os.MkdirAll(paths.DashboardFile, 0755))

	r := NewRenderer(nil)
	report := r.RenderAll(context.Background(), emptyMetricSet(), testTables(), testCrossTab(), paths)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, DashboardArtifact, report.Skipped[0].Name)
	assert.Len(t, report.Rendered, 3)
}

func TestRenderAll_MissingTables(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureOutputDir())

	r := NewRenderer(nil)
	report := r.RenderAll(context.Background(), emptyMetricSet(), nil, nil, paths)

	// nothing renders, nothing panics, all four artifacts are reported skipped
	assert.Empty(t, report.Rendered)
	assert.Len(t, report.Skipped, 4)
}

func TestRevenueBarChart_SinglePoint(t *testing.T) {
	dir := t.TempDir()
	table := &domain.SegmentTable{
		Dimension: domain.DimensionProduct,
		Rows:      []domain.SegmentRow{{Key: "Only", Revenue: 42, RevenueShare: 1}},
	}

	r := NewRenderer(nil)
	path := filepath.Join(dir, "single.png")
	require.NoError(t, r.RevenueBarChart(table, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDashboard_WritesHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.html")

	r := NewRenderer(nil)
	require.NoError(t, r.Dashboard(emptyMetricSet(), testTables(), testCrossTab(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "Revenue by Product")
	assert.Contains(t, html, "Revenue Share by Region")
	assert.Contains(t, html, "Revenue by Product and Region")
}

func TestDashboard_NoCrossTab(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.html")

	r := NewRenderer(nil)
	require.NoError(t, r.Dashboard(emptyMetricSet(), testTables(), nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Revenue by Product and Region")
}
