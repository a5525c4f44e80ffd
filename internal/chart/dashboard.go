package chart

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"salescli/pkg/contracts/domain"
)

// errNoData marks a chart request against an empty or missing table.
var errNoData = errors.New("no data to plot")

// Dashboard writes the interactive HTML dashboard combining a product
// revenue bar chart, the bucketed revenue line, a region share pie, and
// the product×region heatmap.
func (r *Renderer) Dashboard(ms domain.MetricSet, tables []*domain.SegmentTable, crossTab *domain.CrossTab, path string) error {
	page := components.NewPage()
	page.PageTitle = "Sales Analysis Dashboard"
	page.SetLayout(components.PageFlexLayout)

	var added int

	if table := findTable(tables, domain.DimensionProduct); table != nil && len(table.Rows) > 0 {
		page.AddCharts(productBar(table))
		added++
	}
	if table := findTable(tables, domain.DimensionTimeBucket); table != nil && len(table.Rows) > 0 {
		page.AddCharts(revenueLine(table))
		added++
	}
	if table := findTable(tables, domain.DimensionRegion); table != nil && len(table.Rows) > 0 {
		page.AddCharts(regionPie(table))
		added++
	}
	if !crossTab.Empty() {
		page.AddCharts(crossTabHeatMap(crossTab))
		added++
	}

	if added == 0 {
		return errNoData
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dashboard file: %w", err)
	}
	defer file.Close()

	return page.Render(file)
}

func productBar(table *domain.SegmentTable) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue by Product"}),
	)

	rows := table.Rows
	if len(rows) > maxBarSegments {
		rows = rows[:maxBarSegments]
	}

	names := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, row := range rows {
		names[i] = row.Key
		data[i] = opts.BarData{Value: round2(row.Revenue)}
	}

	bar.SetXAxis(names).AddSeries("Revenue", data)
	return bar
}

func revenueLine(table *domain.SegmentTable) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue Over Time"}),
	)

	rows := make([]domain.SegmentRow, len(table.Rows))
	copy(rows, table.Rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	names := make([]string, len(rows))
	data := make([]opts.LineData, len(rows))
	for i, row := range rows {
		names[i] = row.Key
		data[i] = opts.LineData{Value: round2(row.Revenue)}
	}

	line.SetXAxis(names).AddSeries("Revenue", data)
	return line
}

func regionPie(table *domain.SegmentTable) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue Share by Region"}),
	)

	data := make([]opts.PieData, len(table.Rows))
	for i, row := range table.Rows {
		data[i] = opts.PieData{Name: row.Key, Value: round2(row.Revenue)}
	}

	pie.AddSeries("Revenue", data)
	return pie
}

func crossTabHeatMap(ct *domain.CrossTab) *charts.HeatMap {
	products := ct.Products
	if len(products) > maxBarSegments {
		products = products[:maxBarSegments]
	}

	var max float64
	data := make([]opts.HeatMapData, 0, len(products)*len(ct.Regions))
	for i := range products {
		for j := range ct.Regions {
			v := ct.Revenue[i][j]
			if v > max {
				max = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, round2(v)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue by Product and Region"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ct.Regions}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: float32(max)}),
	)
	hm.SetXAxis(products).AddSeries("Revenue", data)
	return hm
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
