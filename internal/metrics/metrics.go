// Package metrics computes the scalar summary statistics for a cleaned
// dataset. Compute is a pure function; undefined ratios come back as NaN
// and must be handled by formatters.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"salescli/pkg/contracts/domain"
)

// BucketPolicy selects the time bucketing used for the period growth
// metric.
type BucketPolicy string

const (
	// BucketAuto picks daily for spans up to autoDailyMaxSpan, else weekly.
	BucketAuto   BucketPolicy = "auto"
	BucketDaily  BucketPolicy = "daily"
	BucketWeekly BucketPolicy = "weekly"
)

// autoDailyMaxSpan is the largest data span still bucketed daily under
// BucketAuto.
const autoDailyMaxSpan = 21 * 24 * time.Hour

// Options configures the metrics engine.
type Options struct {
	GrowthBucket BucketPolicy
}

// Compute derives the metric set from a cleaned dataset. An empty dataset
// yields NaN for every ratio metric and zero for counts.
func Compute(ds *domain.Dataset, opts Options) domain.MetricSet {
	ms := domain.MetricSet{
		Values: make(map[string]float64),
		Notes:  make(map[string]string),
	}

	count := float64(ds.Len())
	ms.Values[domain.MetricTransactionCount] = count

	var totalRevenue, totalQuantity, totalPrice float64
	var weekdayRevenue [7]float64
	products := make(map[string]struct{})
	regions := make(map[string]struct{})
	dailyRevenue := make(map[string]float64)

	for _, r := range ds.Records {
		totalRevenue += r.Revenue()
		totalQuantity += float64(r.Quantity)
		totalPrice += r.UnitPrice
		products[r.Product] = struct{}{}
		regions[r.Region] = struct{}{}
		dailyRevenue[r.Date.Format("2006-01-02")] += r.Revenue()
		weekdayRevenue[r.Date.Weekday()] += r.Revenue()
	}

	ms.Values[domain.MetricTotalRevenue] = totalRevenue
	ms.Values[domain.MetricTotalQuantity] = totalQuantity
	ms.Values[domain.MetricDistinctProducts] = float64(len(products))
	ms.Values[domain.MetricDistinctRegions] = float64(len(regions))

	if count > 0 {
		ms.Values[domain.MetricAverageTicket] = totalRevenue / count
		ms.Values[domain.MetricAverageQuantity] = totalQuantity / count
		ms.Values[domain.MetricAverageUnitPrice] = totalPrice / count
	} else {
		ms.Values[domain.MetricAverageTicket] = math.NaN()
		ms.Values[domain.MetricAverageQuantity] = math.NaN()
		ms.Values[domain.MetricAverageUnitPrice] = math.NaN()
	}

	if len(dailyRevenue) > 0 {
		var sum float64
		bestDay, bestRevenue := "", math.Inf(-1)
		days := make([]string, 0, len(dailyRevenue))
		for day := range dailyRevenue {
			days = append(days, day)
		}
		sort.Strings(days)
		for _, day := range days {
			sum += dailyRevenue[day]
			if dailyRevenue[day] > bestRevenue {
				bestDay, bestRevenue = day, dailyRevenue[day]
			}
		}
		ms.Values[domain.MetricRevenuePerDay] = sum / float64(len(dailyRevenue))
		ms.Values[domain.MetricBestDayRevenue] = bestRevenue
		ms.Notes[domain.NoteBestDay] = bestDay
	} else {
		ms.Values[domain.MetricRevenuePerDay] = math.NaN()
		ms.Values[domain.MetricBestDayRevenue] = math.NaN()
	}

	if count > 0 {
		best := time.Sunday
		for day := time.Monday; day <= time.Saturday; day++ {
			if weekdayRevenue[day] > weekdayRevenue[best] {
				best = day
			}
		}
		ms.Values[domain.MetricBestWeekdayRevenue] = weekdayRevenue[best]
		ms.Notes[domain.NoteBestWeekday] = best.String()
	} else {
		ms.Values[domain.MetricBestWeekdayRevenue] = math.NaN()
	}

	first, last := ds.Span()
	if !first.IsZero() {
		ms.Notes[domain.NotePeriodStart] = first.Format("2006-01-02")
		ms.Notes[domain.NotePeriodEnd] = last.Format("2006-01-02")
	}

	policy := resolvePolicy(opts.GrowthBucket, first, last)
	ms.Values[domain.MetricPeriodGrowth] = periodGrowth(ds, policy)
	ms.Notes[domain.NoteGrowthBucket] = string(policy)

	ms.Values[domain.MetricPriceQtyCorrelation] = priceQuantityCorrelation(ds)

	return ms
}

// resolvePolicy turns the configured policy into a concrete bucketing.
func resolvePolicy(policy BucketPolicy, first, last time.Time) BucketPolicy {
	if policy == BucketDaily || policy == BucketWeekly {
		return policy
	}
	if first.IsZero() || last.Sub(first) <= autoDailyMaxSpan {
		return BucketDaily
	}
	return BucketWeekly
}

// periodGrowth computes the percentage change between the first and second
// half of the bucketed revenue series. The middle bucket of an odd-length
// series belongs to neither half. NaN when fewer than two buckets exist or
// the first half has zero revenue.
func periodGrowth(ds *domain.Dataset, policy BucketPolicy) float64 {
	buckets := bucketRevenue(ds, policy)
	n := len(buckets)
	if n < 2 {
		return math.NaN()
	}

	half := n / 2
	var firstHalf, secondHalf float64
	for _, v := range buckets[:half] {
		firstHalf += v
	}
	for _, v := range buckets[n-half:] {
		secondHalf += v
	}

	if firstHalf == 0 {
		return math.NaN()
	}
	return (secondHalf - firstHalf) / firstHalf * 100
}

// bucketRevenue sums revenue per bucket and returns the values in
// chronological bucket order.
func bucketRevenue(ds *domain.Dataset, policy BucketPolicy) []float64 {
	byBucket := make(map[string]float64)
	for _, r := range ds.Records {
		byBucket[bucketKey(r.Date, policy)] += r.Revenue()
	}

	keys := make([]string, 0, len(byBucket))
	for k := range byBucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = byBucket[k]
	}
	return values
}

// bucketKey formats a sortable bucket key: the day, or the ISO week.
func bucketKey(date time.Time, policy BucketPolicy) string {
	if policy == BucketWeekly {
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return date.Format("2006-01-02")
}

// priceQuantityCorrelation computes the Pearson correlation between unit
// price and quantity across records. NaN when fewer than three records
// exist or either series has no variance.
func priceQuantityCorrelation(ds *domain.Dataset) float64 {
	if ds.Len() < 3 {
		return math.NaN()
	}

	prices := make([]float64, ds.Len())
	quantities := make([]float64, ds.Len())
	for i, r := range ds.Records {
		prices[i] = r.UnitPrice
		quantities[i] = float64(r.Quantity)
	}

	if stat.Variance(prices, nil) == 0 || stat.Variance(quantities, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(prices, quantities, nil)
}
