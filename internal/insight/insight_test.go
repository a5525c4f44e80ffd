package insight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

func metricSet(values map[string]float64, notes map[string]string) domain.MetricSet {
	if notes == nil {
		notes = map[string]string{}
	}
	return domain.MetricSet{Values: values, Notes: notes}
}

func productTable(rows ...domain.SegmentRow) *domain.SegmentTable {
	var total float64
	for _, r := range rows {
		total += r.Revenue
	}
	return &domain.SegmentTable{Dimension: domain.DimensionProduct, Rows: rows, TotalRevenue: total}
}

func TestConcentrationRisk(t *testing.T) {
	table := productTable(
		domain.SegmentRow{Key: "A", Revenue: 80, RevenueShare: 0.8},
		domain.SegmentRow{Key: "B", Revenue: 20, RevenueShare: 0.2},
	)

	insights := Generate(metricSet(nil, nil), []*domain.SegmentTable{table}, DefaultConfig())

	var concentration []domain.Insight
	for _, ins := range insights {
		if ins.Rule == "concentration_risk" {
			concentration = append(concentration, ins)
		}
	}
	require.Len(t, concentration, 1)
	assert.Equal(t, domain.SeverityWarning, concentration[0].Severity)
	assert.Contains(t, concentration[0].Message, `"A"`)
	assert.Contains(t, concentration[0].Message, "80.0%")
	assert.NotContains(t, concentration[0].Message, `"B"`)
}

func TestConcentrationRisk_SkipsTimeBuckets(t *testing.T) {
	table := &domain.SegmentTable{
		Dimension: domain.DimensionTimeBucket,
		Rows:      []domain.SegmentRow{{Key: "2024-01", Revenue: 100, RevenueShare: 1.0}},
	}

	insights := Generate(metricSet(nil, nil), []*domain.SegmentTable{table}, DefaultConfig())
	for _, ins := range insights {
		assert.NotEqual(t, "concentration_risk", ins.Rule)
	}
}

func TestDecliningTrend(t *testing.T) {
	tests := []struct {
		name   string
		growth float64
		want   bool
	}{
		{"negative growth", -12.5, true},
		{"positive growth", 8.0, false},
		{"zero growth", 0.0, false},
		{"undefined growth", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := metricSet(
				map[string]float64{domain.MetricPeriodGrowth: tt.growth},
				map[string]string{domain.NoteGrowthBucket: "weekly"},
			)

			insights := Generate(ms, nil, DefaultConfig())
			found := false
			for _, ins := range insights {
				if ins.Rule == "declining_trend" {
					found = true
					assert.Contains(t, ins.Message, "12.5%")
					assert.Contains(t, ins.Message, "weekly")
				}
			}
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestSegmentOutliers(t *testing.T) {
	// revenues 10, 10, 10, 10, 110: mean 30, population σ = 40
	// 110 deviates exactly 2σ; the rest deviate 0.5σ
	table := productTable(
		domain.SegmentRow{Key: "E", Revenue: 110},
		domain.SegmentRow{Key: "A", Revenue: 10},
		domain.SegmentRow{Key: "B", Revenue: 10},
		domain.SegmentRow{Key: "C", Revenue: 10},
		domain.SegmentRow{Key: "D", Revenue: 10},
	)

	insights := Generate(metricSet(nil, nil), []*domain.SegmentTable{table}, DefaultConfig())

	var outliers []domain.Insight
	for _, ins := range insights {
		if ins.Rule == "segment_outlier" {
			outliers = append(outliers, ins)
		}
	}
	require.Len(t, outliers, 1)
	assert.Contains(t, outliers[0].Message, `"E"`)
}

func TestSegmentOutliers_TinyTable(t *testing.T) {
	table := productTable(
		domain.SegmentRow{Key: "A", Revenue: 1000},
		domain.SegmentRow{Key: "B", Revenue: 1},
	)

	insights := Generate(metricSet(nil, nil), []*domain.SegmentTable{table}, DefaultConfig())
	for _, ins := range insights {
		assert.NotEqual(t, "segment_outlier", ins.Rule)
	}
}

func TestPriceQuantityElasticity(t *testing.T) {
	ms := metricSet(map[string]float64{domain.MetricPriceQtyCorrelation: -0.82}, nil)

	insights := Generate(ms, nil, DefaultConfig())
	found := false
	for _, ins := range insights {
		if ins.Rule == "price_quantity_elasticity" {
			found = true
			assert.Contains(t, ins.Message, "fall")
			assert.Contains(t, ins.Message, "-0.82")
		}
	}
	assert.True(t, found)
}

func TestTopPerformers(t *testing.T) {
	product := productTable(
		domain.SegmentRow{Key: "A", Revenue: 80, RevenueShare: 0.8},
		domain.SegmentRow{Key: "B", Revenue: 20, RevenueShare: 0.2},
	)
	region := &domain.SegmentTable{
		Dimension: domain.DimensionRegion,
		Rows: []domain.SegmentRow{
			{Key: "North", Revenue: 60, RevenueShare: 0.6},
			{Key: "South", Revenue: 40, RevenueShare: 0.4},
		},
	}

	insights := Generate(metricSet(nil, nil), []*domain.SegmentTable{product, region}, DefaultConfig())

	var tops []domain.Insight
	for _, ins := range insights {
		if ins.Rule == "top_performer" {
			tops = append(tops, ins)
		}
	}
	require.Len(t, tops, 2)
	assert.Contains(t, tops[0].Message, `"A"`)
	assert.Contains(t, tops[1].Message, `"North"`)
}

func TestPeakWeekday(t *testing.T) {
	ms := metricSet(
		map[string]float64{
			domain.MetricTotalRevenue:       200,
			domain.MetricBestWeekdayRevenue: 90,
		},
		map[string]string{domain.NoteBestWeekday: "Friday"},
	)

	insights := Generate(ms, nil, DefaultConfig())
	found := false
	for _, ins := range insights {
		if ins.Rule == "peak_weekday" {
			found = true
			assert.Equal(t, domain.SeverityInfo, ins.Severity)
			assert.Contains(t, ins.Message, "Friday")
			assert.Contains(t, ins.Message, "45.0%")
		}
	}
	assert.True(t, found)
}

func TestPeakWeekday_NoNote(t *testing.T) {
	ms := metricSet(map[string]float64{domain.MetricTotalRevenue: 200}, nil)
	insights := Generate(ms, nil, DefaultConfig())
	for _, ins := range insights {
		assert.NotEqual(t, "peak_weekday", ins.Rule)
	}
}

func TestGenerate_RuleOrderStable(t *testing.T) {
	product := productTable(
		domain.SegmentRow{Key: "A", Revenue: 80, RevenueShare: 0.8},
		domain.SegmentRow{Key: "B", Revenue: 20, RevenueShare: 0.2},
	)
	ms := metricSet(
		map[string]float64{domain.MetricPeriodGrowth: -5},
		map[string]string{domain.NoteGrowthBucket: "daily"},
	)

	first := Generate(ms, []*domain.SegmentTable{product}, DefaultConfig())
	second := Generate(ms, []*domain.SegmentTable{product}, DefaultConfig())
	require.Equal(t, first, second)

	// concentration fires before the trend rule
	assert.Equal(t, "concentration_risk", first[0].Rule)
	assert.Equal(t, "declining_trend", first[1].Rule)
}

func TestGenerate_NoRulesSatisfied(t *testing.T) {
	ms := metricSet(map[string]float64{domain.MetricPeriodGrowth: 3.0}, nil)
	insights := Generate(ms, nil, DefaultConfig())
	assert.Empty(t, insights)
}
