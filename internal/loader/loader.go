// Package loader reads the raw sales dataset from a delimited file and
// validates that the required columns are present. Cell values are kept as
// strings; type coercion happens in the cleaner.
package loader

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// Canonical column names the pipeline works with.
const (
	ColProduct   = "product"
	ColRegion    = "region"
	ColCategory  = "category"
	ColDate      = "date"
	ColQuantity  = "quantity"
	ColUnitPrice = "unit_price"
)

// columnAliases maps accepted header spellings to canonical column names.
// The original dataset uses "price"; later exports use "unit_price".
var columnAliases = map[string]string{
	"product":    ColProduct,
	"item":       ColProduct,
	"region":     ColRegion,
	"category":   ColCategory,
	"date":       ColDate,
	"quantity":   ColQuantity,
	"qty":        ColQuantity,
	"price":      ColUnitPrice,
	"unit_price": ColUnitPrice,
	"unitprice":  ColUnitPrice,
}

// requiredColumns must all be present for a load to succeed.
var requiredColumns = []string{ColProduct, ColRegion, ColDate, ColQuantity, ColUnitPrice}

// Loader reads delimited sales data files.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads the file at path into a raw table. It fails with a LOAD error
// if the file is missing, unreadable, malformed, or lacks required columns.
func (l *Loader) Load(ctx context.Context, path string) (*domain.RawTable, error) {
	l.logger.InfoContext(ctx, "loading sales dataset", slog.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLoadError("failed to open input file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are dropped by the cleaner
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewLoadError("input file is empty", nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, errors.NewLoadError("failed to read header row", err).
			WithContext("path", path)
	}

	columns := mapColumns(header)
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, errors.NewLoadError(
			"input file lacks required columns: "+strings.Join(missing, ", "), nil).
			WithContext("path", path).
			WithContext("header", header)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewLoadError("failed to read data rows", err).
			WithContext("path", path)
	}

	_, hasCategory := columns[ColCategory]

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("row_count", len(rows)),
		slog.Bool("has_category", hasCategory))

	return &domain.RawTable{
		Source:      path,
		Columns:     columns,
		Rows:        rows,
		HasCategory: hasCategory,
	}, nil
}

// mapColumns maps canonical column names to their positions in the header.
// Header matching is case- and whitespace-insensitive; the first occurrence
// of a canonical column wins.
func mapColumns(header []string) map[string]int {
	columns := make(map[string]int)
	for i, raw := range header {
		name := normalizeHeader(raw)
		canonical, ok := columnAliases[name]
		if !ok {
			continue
		}
		if _, seen := columns[canonical]; !seen {
			columns[canonical] = i
		}
	}
	return columns
}

// normalizeHeader lowercases a header cell and collapses separators so that
// "Unit Price", "unit-price" and "UNIT_PRICE" all match.
func normalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff") // stray BOM on the first header cell
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// missingColumns returns required columns absent from the mapping, sorted
// for stable error messages.
func missingColumns(columns map[string]int) []string {
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}
