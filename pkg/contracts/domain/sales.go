package domain

import (
	"time"
)

// SaleRecord represents a single cleaned sales transaction.
// Records are immutable once produced by the cleaner.
type SaleRecord struct {
	Product   string    `json:"product" csv:"Product"`
	Region    string    `json:"region" csv:"Region"`
	Category  string    `json:"category,omitempty" csv:"Category"`
	Date      time.Time `json:"date" csv:"Date"`
	Quantity  int64     `json:"quantity" csv:"Quantity"`
	UnitPrice float64   `json:"unit_price" csv:"UnitPrice"`
}

// Revenue returns the derived revenue for the record (quantity × unit price).
func (r SaleRecord) Revenue() float64 {
	return float64(r.Quantity) * r.UnitPrice
}

// IsValid checks if the record carries usable values.
func (r SaleRecord) IsValid() bool {
	return r.Product != "" && r.Region != "" && !r.Date.IsZero() &&
		r.Quantity > 0 && r.UnitPrice > 0
}

// RawTable holds the loaded but not yet cleaned tabular input.
// Cells are kept as raw strings; coercion is the cleaner's job.
type RawTable struct {
	Source      string         `json:"source"`
	Columns     map[string]int `json:"columns"`
	Rows        [][]string     `json:"-"`
	HasCategory bool           `json:"has_category"`
}

// Dataset is the cleaned, immutable working table for one pipeline run.
type Dataset struct {
	Source      string       `json:"source"`
	Records     []SaleRecord `json:"records"`
	HasCategory bool         `json:"has_category"`
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Span returns the earliest and latest transaction dates.
// Both are zero when the dataset is empty.
func (d *Dataset) Span() (time.Time, time.Time) {
	if d.Empty() {
		return time.Time{}, time.Time{}
	}
	first, last := d.Records[0].Date, d.Records[0].Date
	for _, r := range d.Records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last
}

// TotalRevenue sums revenue across all records.
func (d *Dataset) TotalRevenue() float64 {
	var total float64
	for _, r := range d.Records {
		total += r.Revenue()
	}
	return total
}
