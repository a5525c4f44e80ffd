package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func record(product, region string, d int, qty int64, price float64) domain.SaleRecord {
	return domain.SaleRecord{Product: product, Region: region, Date: day(d), Quantity: qty, UnitPrice: price}
}

func TestCompute_SingleRecord(t *testing.T) {
	ds := &domain.Dataset{Records: []domain.SaleRecord{
		record("A", "North", 1, 2, 10),
	}}

	ms := Compute(ds, Options{GrowthBucket: BucketAuto})

	assert.Equal(t, 20.0, ms.Values[domain.MetricTotalRevenue])
	assert.Equal(t, 1.0, ms.Values[domain.MetricTransactionCount])
	assert.Equal(t, 20.0, ms.Values[domain.MetricAverageTicket])
	assert.Equal(t, 2.0, ms.Values[domain.MetricAverageQuantity])
	assert.Equal(t, 1.0, ms.Values[domain.MetricDistinctProducts])
	// single bucket: growth undefined
	assert.True(t, math.IsNaN(ms.Values[domain.MetricPeriodGrowth]))
	assert.Equal(t, "2024-01-01", ms.Notes[domain.NotePeriodStart])
	assert.Equal(t, "2024-01-01", ms.Notes[domain.NoteBestDay])
}

func TestCompute_EmptyDataset(t *testing.T) {
	ms := Compute(&domain.Dataset{}, Options{GrowthBucket: BucketAuto})

	assert.Equal(t, 0.0, ms.Values[domain.MetricTotalRevenue])
	assert.True(t, math.IsNaN(ms.Values[domain.MetricAverageTicket]))
	assert.True(t, math.IsNaN(ms.Values[domain.MetricPeriodGrowth]))
	assert.False(t, ms.Defined(domain.MetricAverageTicket))
	assert.True(t, ms.Defined(domain.MetricTotalRevenue))
}

func TestCompute_PeriodGrowth(t *testing.T) {
	// Four daily buckets: 10, 10, 20, 20 → halves 20 vs 40 → +100%
	ds := &domain.Dataset{Records: []domain.SaleRecord{
		record("A", "N", 1, 1, 10),
		record("A", "N", 2, 1, 10),
		record("A", "N", 3, 1, 20),
		record("A", "N", 4, 1, 20),
	}}

	ms := Compute(ds, Options{GrowthBucket: BucketDaily})
	assert.InDelta(t, 100.0, ms.Values[domain.MetricPeriodGrowth], 1e-9)
	assert.Equal(t, "daily", ms.Notes[domain.NoteGrowthBucket])
}

func TestCompute_PeriodGrowth_OddBucketExcluded(t *testing.T) {
	// Buckets 10, 999, 20 → middle bucket ignored → +100%
	ds := &domain.Dataset{Records: []domain.SaleRecord{
		record("A", "N", 1, 1, 10),
		record("A", "N", 2, 1, 999),
		record("A", "N", 3, 1, 20),
	}}

	ms := Compute(ds, Options{GrowthBucket: BucketDaily})
	assert.InDelta(t, 100.0, ms.Values[domain.MetricPeriodGrowth], 1e-9)
}

func TestResolvePolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy BucketPolicy
		span   time.Duration
		want   BucketPolicy
	}{
		{"explicit daily", BucketDaily, 90 * 24 * time.Hour, BucketDaily},
		{"explicit weekly", BucketWeekly, 24 * time.Hour, BucketWeekly},
		{"auto short span", BucketAuto, 14 * 24 * time.Hour, BucketDaily},
		{"auto span at boundary", BucketAuto, 21 * 24 * time.Hour, BucketDaily},
		{"auto long span", BucketAuto, 60 * 24 * time.Hour, BucketWeekly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := day(1)
			last := first.Add(tt.span)
			assert.Equal(t, tt.want, resolvePolicy(tt.policy, first, last))
		})
	}
}

func TestBucketKey_Weekly(t *testing.T) {
	// 2024-01-01 is a Monday in ISO week 1
	assert.Equal(t, "2024-W01", bucketKey(day(1), BucketWeekly))
	assert.Equal(t, "2024-W02", bucketKey(day(8), BucketWeekly))
	assert.Equal(t, "2024-01-01", bucketKey(day(1), BucketDaily))
}

func TestPriceQuantityCorrelation(t *testing.T) {
	t.Run("perfect negative", func(t *testing.T) {
		ds := &domain.Dataset{Records: []domain.SaleRecord{
			record("A", "N", 1, 30, 1),
			record("A", "N", 2, 20, 2),
			record("A", "N", 3, 10, 3),
		}}
		ms := Compute(ds, Options{})
		assert.InDelta(t, -1.0, ms.Values[domain.MetricPriceQtyCorrelation], 1e-9)
	})

	t.Run("too few records", func(t *testing.T) {
		ds := &domain.Dataset{Records: []domain.SaleRecord{
			record("A", "N", 1, 1, 10),
			record("A", "N", 2, 2, 20),
		}}
		ms := Compute(ds, Options{})
		assert.True(t, math.IsNaN(ms.Values[domain.MetricPriceQtyCorrelation]))
	})

	t.Run("no variance", func(t *testing.T) {
		ds := &domain.Dataset{Records: []domain.SaleRecord{
			record("A", "N", 1, 1, 10),
			record("A", "N", 2, 2, 10),
			record("A", "N", 3, 3, 10),
		}}
		ms := Compute(ds, Options{})
		assert.True(t, math.IsNaN(ms.Values[domain.MetricPriceQtyCorrelation]))
	})
}

func TestCompute_BestWeekday(t *testing.T) {
	// 2024-01-01 is a Monday, 2024-01-05 a Friday
	ds := &domain.Dataset{Records: []domain.SaleRecord{
		record("A", "N", 1, 1, 10), // Monday, 10
		record("A", "N", 5, 1, 30), // Friday, 30
		record("B", "N", 5, 1, 20), // Friday, 20
	}}

	ms := Compute(ds, Options{})
	assert.Equal(t, "Friday", ms.Notes[domain.NoteBestWeekday])
	assert.InDelta(t, 50.0, ms.Values[domain.MetricBestWeekdayRevenue], 1e-9)
}

func TestCompute_BestWeekday_Empty(t *testing.T) {
	ms := Compute(&domain.Dataset{}, Options{})
	assert.True(t, math.IsNaN(ms.Values[domain.MetricBestWeekdayRevenue]))
	_, ok := ms.Notes[domain.NoteBestWeekday]
	assert.False(t, ok)
}

func TestCompute_RevenuePerDay(t *testing.T) {
	ds := &domain.Dataset{Records: []domain.SaleRecord{
		record("A", "N", 1, 1, 10),
		record("B", "N", 1, 1, 20),
		record("A", "N", 2, 1, 30),
	}}

	ms := Compute(ds, Options{})
	require.True(t, ms.Defined(domain.MetricRevenuePerDay))
	assert.InDelta(t, 30.0, ms.Values[domain.MetricRevenuePerDay], 1e-9)
	assert.InDelta(t, 30.0, ms.Values[domain.MetricBestDayRevenue], 1e-9)
	assert.Equal(t, "2024-01-01", ms.Notes[domain.NoteBestDay])
}