// Package segment groups the cleaned dataset by a categorical dimension
// and computes per-group aggregates. Output ordering is deterministic:
// revenue descending, lexical key ascending on ties.
package segment

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// ErrNoCategoryColumn marks a category segmentation request against a
// dataset that was loaded without a category column. The pipeline treats
// it as skip, not failure.
var ErrNoCategoryColumn = errors.NewValidationError("dataset has no category column")

// UncategorizedKey groups records whose dimension value is blank. Every
// record lands in exactly one group so segment revenues reconcile with the
// dataset total.
const UncategorizedKey = "(uncategorized)"

// ByDimension builds the segment table for one dimension. Group key
// equality is exact-match on the case- and whitespace-normalized value;
// the displayed key is the lexically smallest spelling seen in the group.
func ByDimension(ds *domain.Dataset, dim domain.Dimension) (*domain.SegmentTable, error) {
	keyFn, err := keyFunc(ds, dim)
	if err != nil {
		return nil, err
	}

	type group struct {
		display      string
		revenue      float64
		transactions int64
		quantity     int64
		prices       []float64
	}

	groups := make(map[string]*group)
	for _, r := range ds.Records {
		display := keyFn(r)
		if display == "" {
			display = UncategorizedKey
		}
		norm := normalizeKey(display)
		g, ok := groups[norm]
		if !ok {
			g = &group{display: display}
			groups[norm] = g
		} else if display < g.display {
			g.display = display
		}
		g.revenue += r.Revenue()
		g.transactions++
		g.quantity += r.Quantity
		g.prices = append(g.prices, r.UnitPrice)
	}

	total := ds.TotalRevenue()

	rows := make([]domain.SegmentRow, 0, len(groups))
	for _, g := range groups {
		share := 0.0
		if total > 0 {
			share = g.revenue / total
		}
		rows = append(rows, domain.SegmentRow{
			Key:           g.display,
			Revenue:       g.revenue,
			Transactions:  g.transactions,
			Quantity:      g.quantity,
			MeanUnitPrice: stat.Mean(g.prices, nil),
			RevenueShare:  share,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Key < rows[j].Key
	})

	return &domain.SegmentTable{
		Dimension:    dim,
		Rows:         rows,
		TotalRevenue: total,
	}, nil
}

// All builds segment tables for every dimension applicable to the dataset,
// in the fixed dimension order. The category dimension is skipped when the
// dataset has none.
func All(ds *domain.Dataset) []*domain.SegmentTable {
	tables := make([]*domain.SegmentTable, 0, 4)
	for _, dim := range domain.AllDimensions() {
		table, err := ByDimension(ds, dim)
		if err != nil {
			continue
		}
		tables = append(tables, table)
	}
	return tables
}

// CrossTab builds the product×region revenue matrix. Key equality follows
// the same normalization as ByDimension; products come out ordered by
// total revenue descending, regions lexically.
func CrossTab(ds *domain.Dataset) *domain.CrossTab {
	type axis struct {
		display string
		total   float64
	}

	products := make(map[string]*axis)
	regions := make(map[string]*axis)
	cells := make(map[string]float64)

	normAxis := func(m map[string]*axis, display string) string {
		norm := normalizeKey(display)
		a, ok := m[norm]
		if !ok {
			m[norm] = &axis{display: display}
		} else if display < a.display {
			a.display = display
		}
		return norm
	}

	for _, r := range ds.Records {
		p := normAxis(products, r.Product)
		g := normAxis(regions, r.Region)
		products[p].total += r.Revenue()
		cells[p+"\x1f"+g] += r.Revenue()
	}

	productKeys := make([]string, 0, len(products))
	for k := range products {
		productKeys = append(productKeys, k)
	}
	sort.Slice(productKeys, func(i, j int) bool {
		a, b := products[productKeys[i]], products[productKeys[j]]
		if a.total != b.total {
			return a.total > b.total
		}
		return a.display < b.display
	})

	regionKeys := make([]string, 0, len(regions))
	for k := range regions {
		regionKeys = append(regionKeys, k)
	}
	sort.Slice(regionKeys, func(i, j int) bool {
		return regions[regionKeys[i]].display < regions[regionKeys[j]].display
	})

	ct := &domain.CrossTab{
		Products: make([]string, len(productKeys)),
		Regions:  make([]string, len(regionKeys)),
		Revenue:  make([][]float64, len(productKeys)),
	}
	for i, p := range productKeys {
		ct.Products[i] = products[p].display
		ct.Revenue[i] = make([]float64, len(regionKeys))
		for j, g := range regionKeys {
			ct.Revenue[i][j] = cells[p+"\x1f"+g]
		}
	}
	for j, g := range regionKeys {
		ct.Regions[j] = regions[g].display
	}
	return ct
}

// keyFunc returns the grouping key extractor for a dimension.
func keyFunc(ds *domain.Dataset, dim domain.Dimension) (func(domain.SaleRecord) string, error) {
	switch dim {
	case domain.DimensionProduct:
		return func(r domain.SaleRecord) string { return r.Product }, nil
	case domain.DimensionRegion:
		return func(r domain.SaleRecord) string { return r.Region }, nil
	case domain.DimensionCategory:
		if !ds.HasCategory {
			return nil, ErrNoCategoryColumn
		}
		return func(r domain.SaleRecord) string { return r.Category }, nil
	case domain.DimensionTimeBucket:
		return func(r domain.SaleRecord) string { return r.Date.Format("2006-01") }, nil
	default:
		return nil, errors.NewValidationError("unsupported dimension: " + string(dim))
	}
}

// normalizeKey folds case and collapses whitespace for group equality.
func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
