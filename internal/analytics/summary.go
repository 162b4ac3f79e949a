// Package analytics aggregates invoice data for the dashboard: monthly
// revenue, top SKUs and a tax breakdown, served through a versioned
// Redis cache.
package analytics

import "time"

// Filter bounds the aggregation window. Nil ends leave the window open.
type Filter struct {
	From *time.Time
	To   *time.Time
}

// DateRange echoes the applied filter back to the client.
type DateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

// SeriesPoint is one labelled value in a time series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TopSKU ranks a SKU by revenue over the window.
type TopSKU struct {
	SKU      string  `json:"sku"`
	TotalQty float64 `json:"total_qty"`
	Revenue  float64 `json:"revenue"`
}

// TaxBreakdownPoint is the tax collected at one rate.
type TaxBreakdownPoint struct {
	TaxRate   float64 `json:"tax_rate"`
	TaxAmount float64 `json:"tax_amount"`
}

// Summary is the dashboard aggregate.
type Summary struct {
	DateRange     DateRange           `json:"date_range"`
	MonthlyTotals []SeriesPoint       `json:"monthly_totals"`
	TopSKUs       []TopSKU            `json:"top_skus"`
	TaxBreakdown  []TaxBreakdownPoint `json:"tax_breakdown"`
}

func (f Filter) dateRange() DateRange {
	var dr DateRange
	if f.From != nil {
		s := f.From.Format("2006-01-02")
		dr.From = &s
	}
	if f.To != nil {
		s := f.To.Format("2006-01-02")
		dr.To = &s
	}
	return dr
}
