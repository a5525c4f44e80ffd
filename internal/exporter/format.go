package exporter

import (
	"fmt"
	"math"

	"salescli/pkg/contracts/domain"
)

// formatFloat formats a float64 value for export with exactly 2 decimal places
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for export
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatShare formats a 0..1 share as a percentage with one decimal
func formatShare(share float64) string {
	if math.IsNaN(share) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", share*100)
}

// formatMetric formats a metric value, keeping counts integral
func formatMetric(name string, v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		switch name {
		case domain.MetricTransactionCount, domain.MetricTotalQuantity,
			domain.MetricDistinctProducts, domain.MetricDistinctRegions:
			return fmt.Sprintf("%d", int64(v))
		}
	}
	return fmt.Sprintf("%.2f", v)
}
