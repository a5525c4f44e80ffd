// Package exporter writes the pipeline results to disk: the processed
// dataset CSV, one CSV per segment dimension, the consolidated xlsx
// workbook, and the markdown run report.
package exporter

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"syscall"

	"salescli/internal/cleaner"
	"salescli/internal/config"
	apperrors "salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// Format names accepted in the output.formats config list.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatReport = "report"
)

// Input carries everything a run produced that can be exported.
type Input struct {
	RunID    string
	Dataset  *domain.Dataset
	Drops    cleaner.DropReport
	Metrics  domain.MetricSet
	Tables   []*domain.SegmentTable
	Insights []domain.Insight

	// Chart artifacts already on disk, listed in the report inventory.
	ChartsRendered []string
	ChartsSkipped  []Skip
}

// Skip records one artifact that could not be written.
type Skip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ExportReport summarizes which files a run produced.
type ExportReport struct {
	Written []string `json:"written"`
	Skipped []Skip   `json:"skipped"`
}

// Exporter writes run artifacts per the enabled format list.
type Exporter struct {
	paths   *config.Paths
	logger  *slog.Logger
	formats map[string]bool
}

// New creates an exporter writing into paths, restricted to formats.
func New(paths *config.Paths, formats []string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	enabled := make(map[string]bool, len(formats))
	for _, f := range formats {
		enabled[f] = true
	}
	return &Exporter{paths: paths, logger: logger, formats: enabled}
}

// Export writes every enabled artifact. Individual artifact failures are
// recorded and the remaining artifacts still export; only filesystem
// failures that no later artifact can survive (permissions, disk full,
// missing output directory) abort the export.
func (e *Exporter) Export(ctx context.Context, in Input) (ExportReport, error) {
	var report ExportReport

	if err := e.paths.EnsureOutputDir(); err != nil {
		return report, apperrors.NewExportError("output directory unavailable", err)
	}

	write := func(name, path string, fn func() error) error {
		if err := fn(); err != nil {
			if fatalExportErr(err) {
				return apperrors.NewExportError("cannot write "+path, err)
			}
			e.logger.WarnContext(ctx, "artifact skipped",
				slog.String("artifact", name),
				slog.String("error", err.Error()))
			report.Skipped = append(report.Skipped, Skip{Name: name, Reason: err.Error()})
			return nil
		}
		e.logger.InfoContext(ctx, "artifact written",
			slog.String("artifact", name),
			slog.String("path", path))
		report.Written = append(report.Written, path)
		return nil
	}

	if e.formats[FormatCSV] {
		if err := write("processed_csv", e.paths.ProcessedCSV, func() error {
			return writeCSV(e.paths.ProcessedCSV, WriteOptions{
				Headers:   datasetHeader(in.Dataset.HasCategory),
				Records:   datasetRecords(in.Dataset),
				BOMPrefix: true,
			})
		}); err != nil {
			return report, err
		}

		for _, table := range in.Tables {
			table := table
			name := "segment_" + string(table.Dimension)
			path := e.paths.SegmentCSV(table.Dimension)
			if err := write(name, path, func() error {
				return writeCSV(path, WriteOptions{
					Headers:   segmentHeader(table.Dimension),
					Records:   segmentRecords(table),
					BOMPrefix: true,
				})
			}); err != nil {
				return report, err
			}
		}
	}

	if e.formats[FormatXLSX] {
		if err := write("workbook", e.paths.WorkbookFile, func() error {
			return writeWorkbook(e.paths.WorkbookFile, in.Dataset, in.Metrics, in.Tables, in.Insights)
		}); err != nil {
			return report, err
		}
	}

	if e.formats[FormatReport] {
		if err := write("report", e.paths.ReportFile, func() error {
			written := append(append([]string{}, in.ChartsRendered...), report.Written...)
			skipped := append(append([]Skip{}, in.ChartsSkipped...), report.Skipped...)
			return writeReport(e.paths.ReportFile, in, skipped, written)
		}); err != nil {
			return report, err
		}
	}

	return report, nil
}

// fatalExportErr reports whether an artifact write failed in a way that
// will also sink every remaining artifact.
func fatalExportErr(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EROFS)
}
