package domain

// Dimension identifies a segmentation axis over the cleaned dataset.
type Dimension string

const (
	DimensionProduct    Dimension = "product"
	DimensionRegion     Dimension = "region"
	DimensionCategory   Dimension = "category"
	DimensionTimeBucket Dimension = "time_bucket"
)

// AllDimensions lists the supported dimensions in their fixed evaluation
// order. Reports and insight rules iterate dimensions in this order.
func AllDimensions() []Dimension {
	return []Dimension{DimensionProduct, DimensionRegion, DimensionCategory, DimensionTimeBucket}
}

// SegmentRow is the aggregate for one group within a dimension.
type SegmentRow struct {
	Key           string  `json:"key"`
	Revenue       float64 `json:"revenue"`
	Transactions  int64   `json:"transactions"`
	Quantity      int64   `json:"quantity"`
	MeanUnitPrice float64 `json:"mean_unit_price"`
	RevenueShare  float64 `json:"revenue_share"`
}

// SegmentTable holds per-group aggregates for a single dimension.
// Rows are sorted by revenue descending with lexical key order breaking
// ties, so "top" selections are deterministic.
type SegmentTable struct {
	Dimension    Dimension    `json:"dimension"`
	Rows         []SegmentRow `json:"rows"`
	TotalRevenue float64      `json:"total_revenue"`
}

// Top returns the leading row, if any.
func (t *SegmentTable) Top() (SegmentRow, bool) {
	if t == nil || len(t.Rows) == 0 {
		return SegmentRow{}, false
	}
	return t.Rows[0], true
}

// Revenues returns the per-row revenue values in row order.
func (t *SegmentTable) Revenues() []float64 {
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row.Revenue
	}
	return values
}

// CrossTab is the product×region revenue matrix behind the dashboard
// heatmap. Products are ordered by total revenue descending (lexical on
// ties), regions lexically ascending.
type CrossTab struct {
	Products []string    `json:"products"`
	Regions  []string    `json:"regions"`
	Revenue  [][]float64 `json:"revenue"` // [product][region]
}

// Empty reports whether the cross-tab has no cells.
func (c *CrossTab) Empty() bool {
	return c == nil || len(c.Products) == 0 || len(c.Regions) == 0
}
