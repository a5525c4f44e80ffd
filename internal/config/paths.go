package config

import (
	"fmt"
	"os"
	"path/filepath"

	"salescli/pkg/contracts/domain"
)

// Paths contains all output paths for a pipeline run.
// This is the single source of truth for the output directory layout.
type Paths struct {
	OutputDir string

	// Well-known artifact files inside the output directory
	ProcessedCSV  string
	WorkbookFile  string
	ReportFile    string
	DashboardFile string
}

// NewPaths builds the fixed output layout rooted at outputDir.
func NewPaths(outputDir string) *Paths {
	return &Paths{
		OutputDir:     outputDir,
		ProcessedCSV:  filepath.Join(outputDir, "processed_sales.csv"),
		WorkbookFile:  filepath.Join(outputDir, "sales_analysis.xlsx"),
		ReportFile:    filepath.Join(outputDir, "report.md"),
		DashboardFile: filepath.Join(outputDir, "dashboard.html"),
	}
}

// SegmentCSV returns the per-dimension segment export path.
func (p *Paths) SegmentCSV(dim domain.Dimension) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf("segment_%s.csv", dim))
}

// ChartFile returns the path for a named static chart image.
func (p *Paths) ChartFile(name string) string {
	return filepath.Join(p.OutputDir, name+".png")
}

// EnsureOutputDir creates the output directory if it does not exist.
func (p *Paths) EnsureOutputDir() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.OutputDir, err)
	}
	return nil
}
