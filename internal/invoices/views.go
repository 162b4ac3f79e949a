package invoices

import "time"

// ItemView is the JSON projection of a line item.
type ItemView struct {
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	LineTotal   float64 `json:"line_total"`
}

// DetailView is the JSON projection of an invoice with items.
type DetailView struct {
	ID            int64      `json:"id"`
	SupplierName  *string    `json:"supplier_name"`
	SupplierGSTIN *string    `json:"supplier_gstin"`
	InvoiceNo     string     `json:"invoice_no"`
	InvoiceDate   *string    `json:"invoice_date"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	Status        string     `json:"status"`
	CreatedAt     *string    `json:"created_at"`
	Items         []ItemView `json:"items"`
}

// SummaryView is the JSON projection of a list row.
type SummaryView struct {
	ID           int64   `json:"id"`
	SupplierName *string `json:"supplier_name"`
	InvoiceNo    string  `json:"invoice_no"`
	Total        float64 `json:"total"`
	Status       string  `json:"status"`
	CreatedAt    *string `json:"created_at"`
}

// NewDetailView converts the domain detail into its JSON shape.
func NewDetailView(detail InvoiceWithItems) DetailView {
	view := DetailView{
		ID:            detail.ID,
		SupplierName:  detail.SupplierName,
		SupplierGSTIN: detail.SupplierGSTIN,
		InvoiceNo:     detail.InvoiceNo,
		InvoiceDate:   isoDate(detail.InvoiceDate),
		Subtotal:      detail.Subtotal,
		Tax:           detail.Tax,
		Total:         detail.Total,
		Status:        string(detail.Status),
		CreatedAt:     isoTime(detail.CreatedAt),
		Items:         make([]ItemView, 0, len(detail.Items)),
	}
	for _, item := range detail.Items {
		view.Items = append(view.Items, NewItemView(item))
	}
	return view
}

// NewItemView converts a line item into its JSON shape.
func NewItemView(item InvoiceItem) ItemView {
	var rate float64
	if item.TaxRate != nil {
		rate = *item.TaxRate
	}
	return ItemView{
		SKU:         item.SKU,
		Description: item.Description,
		Qty:         item.Qty,
		UnitPrice:   item.UnitPrice,
		TaxRate:     rate,
		LineTotal:   item.LineTotal,
	}
}

// NewSummaryView converts a summary row into its JSON shape.
func NewSummaryView(summary InvoiceSummary) SummaryView {
	return SummaryView{
		ID:           summary.ID,
		SupplierName: summary.SupplierName,
		InvoiceNo:    summary.InvoiceNo,
		Total:        summary.Total,
		Status:       string(summary.Status),
		CreatedAt:    isoTime(summary.CreatedAt),
	}
}

func isoDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

func isoTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
