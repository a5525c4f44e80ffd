package domain

import (
	"math"
	"sort"
)

// Metric names produced by the metrics engine. The set is fixed per run.
const (
	MetricTotalRevenue        = "total_revenue"
	MetricTransactionCount    = "transaction_count"
	MetricTotalQuantity       = "total_quantity"
	MetricAverageTicket       = "average_ticket"
	MetricAverageQuantity     = "average_quantity"
	MetricAverageUnitPrice    = "average_unit_price"
	MetricDistinctProducts    = "distinct_products"
	MetricDistinctRegions     = "distinct_regions"
	MetricRevenuePerDay       = "revenue_per_day"
	MetricPeriodGrowth        = "period_growth_percent"
	MetricBestDayRevenue      = "best_day_revenue"
	MetricBestWeekdayRevenue  = "best_weekday_revenue"
	MetricPriceQtyCorrelation = "price_quantity_correlation"
)

// Note keys attached to a metric set.
const (
	NoteGrowthBucket = "growth_bucket"
	NotePeriodStart  = "period_start"
	NotePeriodEnd    = "period_end"
	NoteBestDay      = "best_day"
	NoteBestWeekday  = "best_weekday"
)

// MetricSet is a flat mapping from metric name to scalar value, computed
// once per run and read-only thereafter. Undefined ratios (empty dataset,
// zero-length period) are stored as NaN; formatters must handle it.
type MetricSet struct {
	Values map[string]float64 `json:"values"`
	Notes  map[string]string  `json:"notes"`
}

// Get returns the named metric and whether it is present.
func (m MetricSet) Get(name string) (float64, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// Defined reports whether the named metric is present and not NaN.
func (m MetricSet) Defined(name string) bool {
	v, ok := m.Values[name]
	return ok && !math.IsNaN(v)
}

// Names returns the metric names in sorted order for deterministic output.
func (m MetricSet) Names() []string {
	names := make([]string, 0, len(m.Values))
	for name := range m.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
