package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"salescli/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// writeCSV writes data to a CSV file with the given options
func writeCSV(fullPath string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// datasetHeader returns the processed dataset column set.
func datasetHeader(hasCategory bool) []string {
	header := []string{"Product", "Region"}
	if hasCategory {
		header = append(header, "Category")
	}
	return append(header, "Date", "Quantity", "UnitPrice", "Revenue")
}

// datasetRecords flattens the cleaned dataset for CSV output.
func datasetRecords(ds *domain.Dataset) [][]string {
	records := make([][]string, 0, ds.Len())
	for _, r := range ds.Records {
		row := []string{r.Product, r.Region}
		if ds.HasCategory {
			row = append(row, r.Category)
		}
		row = append(row,
			r.Date.Format("2006-01-02"),
			formatInt(r.Quantity),
			formatFloat(r.UnitPrice),
			formatFloat(r.Revenue()),
		)
		records = append(records, row)
	}
	return records
}

// segmentHeader returns the column set for a segment table export.
func segmentHeader(dim domain.Dimension) []string {
	return []string{dimensionLabel(dim), "Revenue", "Transactions", "Quantity", "MeanUnitPrice", "RevenueShare"}
}

// dimensionLabel renders "time_bucket" as "Time Bucket" for headers.
func dimensionLabel(dim domain.Dimension) string {
	words := strings.Split(string(dim), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// segmentRecords flattens a segment table for CSV output.
func segmentRecords(table *domain.SegmentTable) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, []string{
			row.Key,
			formatFloat(row.Revenue),
			formatInt(row.Transactions),
			formatInt(row.Quantity),
			formatFloat(row.MeanUnitPrice),
			formatShare(row.RevenueShare),
		})
	}
	return records
}
