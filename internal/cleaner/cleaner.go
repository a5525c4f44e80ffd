// Package cleaner turns a raw table into the cleaned, typed dataset the
// rest of the pipeline consumes. Bad rows are dropped, never raised;
// only a fully empty result is an error.
package cleaner

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"salescli/internal/errors"
	"salescli/internal/loader"
	"salescli/pkg/contracts/domain"
)

// dateLayouts are the accepted input date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// DropReport accounts for every row removed during cleaning, by reason.
type DropReport struct {
	RowsIn       int `json:"rows_in"`
	RowsOut      int `json:"rows_out"`
	ShortRow     int `json:"short_row"`
	MissingField int `json:"missing_field"`
	BadDate      int `json:"bad_date"`
	BadNumber    int `json:"bad_number"`
	NonPositive  int `json:"non_positive"`
	Duplicate    int `json:"duplicate"`
}

// Dropped returns the total number of rows removed.
func (r DropReport) Dropped() int {
	return r.RowsIn - r.RowsOut
}

// DropReason pairs a human-readable drop reason with its count.
type DropReason struct {
	Reason string
	Count  int
}

// Reasons returns the per-reason counts in a fixed report order.
// Zero-count reasons are omitted.
func (r DropReport) Reasons() []DropReason {
	all := []DropReason{
		{"short row", r.ShortRow},
		{"missing field", r.MissingField},
		{"unparseable date", r.BadDate},
		{"unparseable number", r.BadNumber},
		{"non-positive quantity or price", r.NonPositive},
		{"duplicate", r.Duplicate},
	}
	out := make([]DropReason, 0, len(all))
	for _, reason := range all {
		if reason.Count > 0 {
			out = append(out, reason)
		}
	}
	return out
}

// Cleaner validates, coerces and deduplicates raw rows.
type Cleaner struct {
	logger *slog.Logger
}

// New creates a cleaner. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean produces the cleaned dataset from a raw table. Rows with missing
// required fields, failed coercions, non-positive amounts, or exact
// duplicates are dropped and accounted for in the report. An empty result
// fails with an EMPTY_DATASET error.
func (c *Cleaner) Clean(ctx context.Context, raw *domain.RawTable) (*domain.Dataset, DropReport, error) {
	report := DropReport{RowsIn: len(raw.Rows)}

	records := make([]domain.SaleRecord, 0, len(raw.Rows))
	seen := make(map[string]struct{}, len(raw.Rows))

	for _, row := range raw.Rows {
		record, reason := c.coerceRow(raw, row)
		switch reason {
		case dropNone:
		case dropShortRow:
			report.ShortRow++
			continue
		case dropMissingField:
			report.MissingField++
			continue
		case dropBadDate:
			report.BadDate++
			continue
		case dropBadNumber:
			report.BadNumber++
			continue
		case dropNonPositive:
			report.NonPositive++
			continue
		}

		key := duplicateKey(record)
		if _, dup := seen[key]; dup {
			report.Duplicate++
			continue
		}
		seen[key] = struct{}{}
		records = append(records, record)
	}

	report.RowsOut = len(records)

	c.logger.InfoContext(ctx, "dataset cleaned",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("rows_dropped", report.Dropped()))

	if len(records) == 0 {
		return nil, report, errors.NewEmptyDatasetError("no valid rows survived cleaning").
			WithContext("source", raw.Source).
			WithContext("rows_in", report.RowsIn)
	}

	return &domain.Dataset{
		Source:      raw.Source,
		Records:     records,
		HasCategory: raw.HasCategory,
	}, report, nil
}

// CleanDataset re-cleans an already typed dataset. Cleaning is idempotent:
// a dataset produced by Clean passes through unchanged.
func (c *Cleaner) CleanDataset(ctx context.Context, ds *domain.Dataset) (*domain.Dataset, DropReport, error) {
	report := DropReport{RowsIn: ds.Len()}

	records := make([]domain.SaleRecord, 0, ds.Len())
	seen := make(map[string]struct{}, ds.Len())

	for _, r := range ds.Records {
		r.Product = normalizeValue(r.Product)
		r.Region = normalizeValue(r.Region)
		r.Category = normalizeValue(r.Category)
		r.Date = r.Date.Truncate(24 * time.Hour)

		if !r.IsValid() {
			report.MissingField++
			continue
		}
		key := duplicateKey(r)
		if _, dup := seen[key]; dup {
			report.Duplicate++
			continue
		}
		seen[key] = struct{}{}
		records = append(records, r)
	}

	report.RowsOut = len(records)
	if len(records) == 0 {
		return nil, report, errors.NewEmptyDatasetError("no valid rows survived cleaning")
	}

	return &domain.Dataset{Source: ds.Source, Records: records, HasCategory: ds.HasCategory}, report, nil
}

type dropReason int

const (
	dropNone dropReason = iota
	dropShortRow
	dropMissingField
	dropBadDate
	dropBadNumber
	dropNonPositive
)

// coerceRow converts one raw row into a typed record, or reports why it
// must be dropped.
func (c *Cleaner) coerceRow(raw *domain.RawTable, row []string) (domain.SaleRecord, dropReason) {
	cell := func(col string) (string, bool) {
		idx, ok := raw.Columns[col]
		if !ok || idx >= len(row) {
			return "", false
		}
		return normalizeValue(row[idx]), true
	}

	product, ok := cell(loader.ColProduct)
	if !ok {
		return domain.SaleRecord{}, dropShortRow
	}
	region, ok := cell(loader.ColRegion)
	if !ok {
		return domain.SaleRecord{}, dropShortRow
	}
	dateStr, ok := cell(loader.ColDate)
	if !ok {
		return domain.SaleRecord{}, dropShortRow
	}
	qtyStr, ok := cell(loader.ColQuantity)
	if !ok {
		return domain.SaleRecord{}, dropShortRow
	}
	priceStr, ok := cell(loader.ColUnitPrice)
	if !ok {
		return domain.SaleRecord{}, dropShortRow
	}
	category, _ := cell(loader.ColCategory)

	if product == "" || region == "" || dateStr == "" || qtyStr == "" || priceStr == "" {
		return domain.SaleRecord{}, dropMissingField
	}

	date, ok := parseDate(dateStr)
	if !ok {
		return domain.SaleRecord{}, dropBadDate
	}

	qty, err := strconv.ParseFloat(qtyStr, 64)
	if err != nil || math.Trunc(qty) != qty {
		return domain.SaleRecord{}, dropBadNumber
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return domain.SaleRecord{}, dropBadNumber
	}

	if qty <= 0 || price <= 0 {
		return domain.SaleRecord{}, dropNonPositive
	}

	return domain.SaleRecord{
		Product:   product,
		Region:    region,
		Category:  category,
		Date:      date,
		Quantity:  int64(qty),
		UnitPrice: price,
	}, dropNone
}

// parseDate tries the accepted layouts and truncates to day precision.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// normalizeValue trims and collapses inner whitespace.
func normalizeValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// duplicateKey builds the exact-duplicate identity for a record: all
// canonical fields, dates at day precision.
func duplicateKey(r domain.SaleRecord) string {
	return strings.Join([]string{
		r.Product,
		r.Region,
		r.Category,
		r.Date.Format("2006-01-02"),
		strconv.FormatInt(r.Quantity, 10),
		strconv.FormatFloat(r.UnitPrice, 'f', -1, 64),
	}, "\x1f")
}
