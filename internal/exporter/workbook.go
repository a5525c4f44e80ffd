package exporter

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"salescli/pkg/contracts/domain"
)

// sheet names in the consolidated workbook
const (
	sheetData     = "Data"
	sheetMetrics  = "Metrics"
	sheetInsights = "Insights"
)

// writeWorkbook builds the consolidated workbook: the cleaned data, one
// sheet per segment table with an embedded chart on the product sheet,
// the metric set, and the insights.
func writeWorkbook(path string, ds *domain.Dataset, ms domain.MetricSet, tables []*domain.SegmentTable, insights []domain.Insight) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err = f.SetSheetName("Sheet1", sheetData); err != nil {
		return err
	}
	if err = fillDataSheet(f, ds); err != nil {
		return err
	}

	for _, table := range tables {
		name := sheetNameFor(table.Dimension)
		if _, err = f.NewSheet(name); err != nil {
			return err
		}
		if err = fillSegmentSheet(f, name, table); err != nil {
			return err
		}
		if table.Dimension == domain.DimensionProduct {
			if err = embedProductChart(f, name, len(table.Rows)); err != nil {
				return err
			}
		}
	}

	if _, err = f.NewSheet(sheetMetrics); err != nil {
		return err
	}
	if err = fillMetricsSheet(f, ms); err != nil {
		return err
	}

	if _, err = f.NewSheet(sheetInsights); err != nil {
		return err
	}
	if err = fillInsightsSheet(f, insights); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func sheetNameFor(dim domain.Dimension) string {
	return "By " + dimensionLabel(dim)
}

func fillDataSheet(f *excelize.File, ds *domain.Dataset) error {
	if err := writeRow(f, sheetData, 1, toAny(datasetHeader(ds.HasCategory))); err != nil {
		return err
	}
	for i, r := range ds.Records {
		row := []any{r.Product, r.Region}
		if ds.HasCategory {
			row = append(row, r.Category)
		}
		row = append(row, r.Date.Format("2006-01-02"), r.Quantity, r.UnitPrice, r.Revenue())
		if err := writeRow(f, sheetData, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func fillSegmentSheet(f *excelize.File, name string, table *domain.SegmentTable) error {
	if err := writeRow(f, name, 1, toAny(segmentHeader(table.Dimension))); err != nil {
		return err
	}
	for i, row := range table.Rows {
		values := []any{row.Key, row.Revenue, row.Transactions, row.Quantity, row.MeanUnitPrice, row.RevenueShare}
		if err := writeRow(f, name, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func fillMetricsSheet(f *excelize.File, ms domain.MetricSet) error {
	if err := writeRow(f, sheetMetrics, 1, []any{"Metric", "Value"}); err != nil {
		return err
	}
	row := 2
	for _, name := range ms.Names() {
		if err := writeRow(f, sheetMetrics, row, []any{name, formatMetric(name, ms.Values[name])}); err != nil {
			return err
		}
		row++
	}
	for _, note := range sortedNoteKeys(ms) {
		if err := writeRow(f, sheetMetrics, row, []any{note, ms.Notes[note]}); err != nil {
			return err
		}
		row++
	}
	return nil
}

func fillInsightsSheet(f *excelize.File, insights []domain.Insight) error {
	if err := writeRow(f, sheetInsights, 1, []any{"Rule", "Severity", "Category", "Message"}); err != nil {
		return err
	}
	for i, ins := range insights {
		if err := writeRow(f, sheetInsights, i+2, []any{ins.Rule, string(ins.Severity), ins.Category, ins.Message}); err != nil {
			return err
		}
	}
	return nil
}

// embedProductChart adds a column chart next to the product segment table.
func embedProductChart(f *excelize.File, sheet string, rowCount int) error {
	if rowCount == 0 {
		return nil
	}
	series := excelize.ChartSeries{
		Name:       fmt.Sprintf("'%s'!$B$1", sheet),
		Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, rowCount+1),
		Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, rowCount+1),
	}
	return f.AddChart(sheet, "H2", &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{series},
		Title:  []excelize.RichTextRun{{Text: "Revenue by Product"}},
	})
}

// writeRow writes one row of values starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func sortedNoteKeys(ms domain.MetricSet) []string {
	keys := make([]string, 0, len(ms.Notes))
	for k := range ms.Notes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
