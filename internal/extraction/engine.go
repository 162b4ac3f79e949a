// Package extraction turns uploaded invoice documents into structured
// invoice data. An Engine produces raw text; the parser applies document
// heuristics on top of it. When no engine is configured or the engine
// yields nothing, a deterministic fallback keeps local development working.
package extraction

import "context"

// Engine extracts raw text from an uploaded document.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, content []byte, contentType string) (string, error)
}

// ResultItem is one extracted line item.
type ResultItem struct {
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	LineTotal   float64 `json:"line_total"`
}

// Result is the structured output of an extraction run.
type Result struct {
	SupplierName  *string      `json:"supplier_name"`
	SupplierGSTIN *string      `json:"supplier_gstin"`
	InvoiceNo     string       `json:"invoice_no"`
	InvoiceDate   string       `json:"invoice_date"`
	Subtotal      float64      `json:"subtotal"`
	Tax           float64      `json:"tax"`
	Total         float64      `json:"total"`
	Items         []ResultItem `json:"items"`
}
