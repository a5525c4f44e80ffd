// Package insight applies rule-based checks over the metric set and
// segment tables to surface human-readable observations. Rules run in a
// fixed declaration order so reports are reproducible across runs;
// unsatisfied rules contribute nothing.
package insight

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"salescli/pkg/contracts/domain"
)

// Config holds the rule thresholds.
type Config struct {
	// ConcentrationThreshold is the revenue share above which a segment is
	// flagged as a concentration risk.
	ConcentrationThreshold float64
	// OutlierStdDevs is how many standard deviations from the table mean a
	// segment revenue must be to count as an outlier.
	OutlierStdDevs float64
	// CorrelationMin is the minimum |Pearson r| between unit price and
	// quantity worth reporting.
	CorrelationMin float64
}

// DefaultConfig returns the built-in rule thresholds.
func DefaultConfig() Config {
	return Config{
		ConcentrationThreshold: 0.75,
		OutlierStdDevs:         2.0,
		CorrelationMin:         0.6,
	}
}

// rule is one independent check contributing zero or more insights.
type rule func(ms domain.MetricSet, tables []*domain.SegmentTable, cfg Config) []domain.Insight

// rules lists every check in its fixed evaluation order.
var rules = []rule{
	concentrationRisk,
	decliningTrend,
	segmentOutliers,
	priceQuantityElasticity,
	topPerformers,
	peakWeekday,
}

// Generate evaluates all rules against the computed aggregates. The
// returned order is rule-declaration order; within a rule, segment tables
// are visited in their given order and rows lexically by key.
func Generate(ms domain.MetricSet, tables []*domain.SegmentTable, cfg Config) []domain.Insight {
	var insights []domain.Insight
	for _, r := range rules {
		insights = append(insights, r(ms, tables, cfg)...)
	}
	return insights
}

// concentrationDimensions are the dimensions checked for concentration
// risk. Time buckets concentrate trivially and are excluded.
var concentrationDimensions = map[domain.Dimension]bool{
	domain.DimensionProduct:  true,
	domain.DimensionRegion:   true,
	domain.DimensionCategory: true,
}

func concentrationRisk(_ domain.MetricSet, tables []*domain.SegmentTable, cfg Config) []domain.Insight {
	var out []domain.Insight
	for _, table := range tables {
		if !concentrationDimensions[table.Dimension] {
			continue
		}
		for _, row := range sortedByKey(table.Rows) {
			if row.RevenueShare <= cfg.ConcentrationThreshold {
				continue
			}
			out = append(out, domain.Insight{
				Rule:     "concentration_risk",
				Severity: domain.SeverityWarning,
				Category: "concentration",
				Message: fmt.Sprintf("%s %q holds %.1f%% of total revenue (threshold %.0f%%)",
					table.Dimension, row.Key, row.RevenueShare*100, cfg.ConcentrationThreshold*100),
			})
		}
	}
	return out
}

func decliningTrend(ms domain.MetricSet, _ []*domain.SegmentTable, _ Config) []domain.Insight {
	growth, ok := ms.Get(domain.MetricPeriodGrowth)
	if !ok || math.IsNaN(growth) || growth >= 0 {
		return nil
	}
	bucket := ms.Notes[domain.NoteGrowthBucket]
	return []domain.Insight{{
		Rule:     "declining_trend",
		Severity: domain.SeverityWarning,
		Category: "trend",
		Message: fmt.Sprintf("revenue declined %.1f%% between the first and second half of the period (%s buckets)",
			-growth, bucket),
	}}
}

func segmentOutliers(_ domain.MetricSet, tables []*domain.SegmentTable, cfg Config) []domain.Insight {
	var out []domain.Insight
	for _, table := range tables {
		// dispersion is meaningless for tiny tables
		if len(table.Rows) < 3 {
			continue
		}
		revenues := table.Revenues()
		mean := stat.Mean(revenues, nil)
		sigma := stat.PopStdDev(revenues, nil)
		if sigma == 0 {
			continue
		}
		for _, row := range sortedByKey(table.Rows) {
			deviation := math.Abs(row.Revenue-mean) / sigma
			if deviation < cfg.OutlierStdDevs {
				continue
			}
			out = append(out, domain.Insight{
				Rule:     "segment_outlier",
				Severity: domain.SeverityInfo,
				Category: "outlier",
				Message: fmt.Sprintf("%s %q revenue %.2f deviates %.1f standard deviations from the %s mean %.2f",
					table.Dimension, row.Key, row.Revenue, deviation, table.Dimension, mean),
			})
		}
	}
	return out
}

func priceQuantityElasticity(ms domain.MetricSet, _ []*domain.SegmentTable, cfg Config) []domain.Insight {
	r, ok := ms.Get(domain.MetricPriceQtyCorrelation)
	if !ok || math.IsNaN(r) || math.Abs(r) < cfg.CorrelationMin {
		return nil
	}
	direction := "rise"
	if r < 0 {
		direction = "fall"
	}
	return []domain.Insight{{
		Rule:     "price_quantity_elasticity",
		Severity: domain.SeverityInfo,
		Category: "correlation",
		Message: fmt.Sprintf("quantities tend to %s with unit price (Pearson r=%.2f)",
			direction, r),
	}}
}

func topPerformers(_ domain.MetricSet, tables []*domain.SegmentTable, _ Config) []domain.Insight {
	var out []domain.Insight
	for _, dim := range []domain.Dimension{domain.DimensionProduct, domain.DimensionRegion} {
		table := findTable(tables, dim)
		if table == nil {
			continue
		}
		top, ok := table.Top()
		if !ok {
			continue
		}
		out = append(out, domain.Insight{
			Rule:     "top_performer",
			Severity: domain.SeverityInfo,
			Category: "performance",
			Message: fmt.Sprintf("leading %s is %q with revenue %.2f (%.1f%% of total)",
				dim, top.Key, top.Revenue, top.RevenueShare*100),
		})
	}
	return out
}

func peakWeekday(ms domain.MetricSet, _ []*domain.SegmentTable, _ Config) []domain.Insight {
	day, ok := ms.Notes[domain.NoteBestWeekday]
	if !ok {
		return nil
	}
	best, _ := ms.Get(domain.MetricBestWeekdayRevenue)
	total, totalOK := ms.Get(domain.MetricTotalRevenue)
	if math.IsNaN(best) || !totalOK || total <= 0 {
		return nil
	}
	return []domain.Insight{{
		Rule:     "peak_weekday",
		Severity: domain.SeverityInfo,
		Category: "temporal",
		Message: fmt.Sprintf("%s is the strongest weekday with %.1f%% of revenue",
			day, best/total*100),
	}}
}

// sortedByKey returns the rows in lexical key order without mutating the
// table's revenue-ordered rows.
func sortedByKey(rows []domain.SegmentRow) []domain.SegmentRow {
	out := make([]domain.SegmentRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func findTable(tables []*domain.SegmentTable, dim domain.Dimension) *domain.SegmentTable {
	for _, table := range tables {
		if table.Dimension == dim {
			return table
		}
	}
	return nil
}
