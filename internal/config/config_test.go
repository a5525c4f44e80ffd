package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", cfg.Input.Path)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, []string{"csv", "xlsx", "report"}, cfg.Output.Formats)
	assert.Equal(t, 0.75, cfg.Analysis.ConcentrationThreshold)
	assert.Equal(t, 2.0, cfg.Analysis.OutlierStdDevs)
	assert.Equal(t, "auto", cfg.Analysis.GrowthBucket)
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "sales-analytics.yml")
	content := `
input:
  path: data/q3_sales.csv
output:
  dir: results
analysis:
  concentration_threshold: 0.6
  growth_bucket: weekly
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, "data/q3_sales.csv", cfg.Input.Path)
	assert.Equal(t, "results", cfg.Output.Dir)
	assert.Equal(t, 0.6, cfg.Analysis.ConcentrationThreshold)
	assert.Equal(t, "weekly", cfg.Analysis.GrowthBucket)
	// Untouched fields keep their defaults
	assert.Equal(t, 2.0, cfg.Analysis.OutlierStdDevs)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "sales-analytics.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("input:\n  path: from_file.csv\n"), 0644))

	t.Setenv("SALES_INPUT_PATH", "from_env.csv")

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)
	assert.Equal(t, "from_env.csv", cfg.Input.Path)
}

func TestLoadFrom_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "sales-analytics.yml")
	require.NoError(t, os.WriteFile(configFile, []byte("analysis:\n  growth_bucket: hourly\n"), 0644))

	_, err := LoadFrom(configFile)
	assert.Error(t, err)
}

func TestConfig_ExportsFormat(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.ExportsFormat("csv"))
	assert.True(t, cfg.ExportsFormat("xlsx"))
	assert.False(t, cfg.ExportsFormat("pdf"))
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestPaths_Layout(t *testing.T) {
	paths := NewPaths("out")

	assert.Equal(t, filepath.Join("out", "processed_sales.csv"), paths.ProcessedCSV)
	assert.Equal(t, filepath.Join("out", "sales_analysis.xlsx"), paths.WorkbookFile)
	assert.Equal(t, filepath.Join("out", "report.md"), paths.ReportFile)
	assert.Equal(t, filepath.Join("out", "dashboard.html"), paths.DashboardFile)
	assert.Equal(t, filepath.Join("out", "segment_region.csv"), paths.SegmentCSV(domain.DimensionRegion))
	assert.Equal(t, filepath.Join("out", "revenue_by_product.png"), paths.ChartFile("revenue_by_product"))
}

func TestPaths_EnsureOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	paths := NewPaths(dir)

	require.NoError(t, paths.EnsureOutputDir())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
