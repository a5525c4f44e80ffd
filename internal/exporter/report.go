package exporter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"salescli/internal/cleaner"
	"salescli/pkg/contracts/domain"
)

// reportMaxSegmentRows caps how many rows of each segment table appear in
// the markdown report.
const reportMaxSegmentRows = 10

// writeReport renders the textual run report to path.
func writeReport(path string, in Input, skipped []Skip, written []string) error {
	report := buildReport(in, skipped, written)
	return os.WriteFile(path, []byte(report), 0644)
}

// buildReport assembles the markdown report body.
func buildReport(in Input, skipped []Skip, written []string) string {
	var b strings.Builder

	b.WriteString("# Sales Analysis Report\n\n")
	fmt.Fprintf(&b, "- **Run ID:** %s\n", in.RunID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "- **Source:** %s\n", in.Dataset.Source)
	if start, ok := in.Metrics.Notes[domain.NotePeriodStart]; ok {
		fmt.Fprintf(&b, "- **Period:** %s to %s\n", start, in.Metrics.Notes[domain.NotePeriodEnd])
	}
	b.WriteString("\n")

	writeMetricsSection(&b, in.Metrics)
	writeCleaningSection(&b, in.Drops)
	writeInsightsSection(&b, in.Insights)
	for _, table := range in.Tables {
		writeSegmentSection(&b, table)
	}
	writeArtifactsSection(&b, written, skipped)

	return b.String()
}

func writeMetricsSection(b *strings.Builder, ms domain.MetricSet) {
	b.WriteString("## Summary Metrics\n\n")
	b.WriteString("| Metric | Value |\n|--------|-------|\n")
	for _, name := range ms.Names() {
		fmt.Fprintf(b, "| %s | %s |\n", name, formatMetric(name, ms.Values[name]))
	}
	for _, note := range sortedNoteKeys(ms) {
		fmt.Fprintf(b, "| %s | %s |\n", note, ms.Notes[note])
	}
	b.WriteString("\n")
}

func writeCleaningSection(b *strings.Builder, drops cleaner.DropReport) {
	b.WriteString("## Cleaning\n\n")
	fmt.Fprintf(b, "%d of %d rows kept (%d dropped).\n\n", drops.RowsOut, drops.RowsIn, drops.Dropped())
	if reasons := drops.Reasons(); len(reasons) > 0 {
		b.WriteString("| Drop reason | Rows |\n|-------------|------|\n")
		for _, r := range reasons {
			fmt.Fprintf(b, "| %s | %d |\n", r.Reason, r.Count)
		}
		b.WriteString("\n")
	}
}

func writeInsightsSection(b *strings.Builder, insights []domain.Insight) {
	b.WriteString("## Insights\n\n")
	if len(insights) == 0 {
		b.WriteString("No insight rules were triggered.\n\n")
		return
	}
	for _, ins := range insights {
		fmt.Fprintf(b, "- **[%s]** %s\n", ins.Severity, ins.Message)
	}
	b.WriteString("\n")
}

func writeSegmentSection(b *strings.Builder, table *domain.SegmentTable) {
	fmt.Fprintf(b, "## Revenue by %s\n\n", dimensionLabel(table.Dimension))
	fmt.Fprintf(b, "| %s | Revenue | Transactions | Share |\n|---|---------|--------------|-------|\n",
		dimensionLabel(table.Dimension))
	rows := table.Rows
	if len(rows) > reportMaxSegmentRows {
		rows = rows[:reportMaxSegmentRows]
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s | %d | %s |\n",
			row.Key, formatFloat(row.Revenue), row.Transactions, formatShare(row.RevenueShare))
	}
	if len(table.Rows) > reportMaxSegmentRows {
		fmt.Fprintf(b, "\n_%d more segments omitted._\n", len(table.Rows)-reportMaxSegmentRows)
	}
	b.WriteString("\n")
}

func writeArtifactsSection(b *strings.Builder, written []string, skipped []Skip) {
	b.WriteString("## Artifacts\n\n")
	for _, path := range written {
		fmt.Fprintf(b, "- `%s`\n", path)
	}
	if len(skipped) > 0 {
		b.WriteString("\n### Skipped\n\n")
		for _, s := range skipped {
			fmt.Fprintf(b, "- %s: %s\n", s.Name, s.Reason)
		}
	}
	b.WriteString("\n")
}
