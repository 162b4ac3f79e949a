package invoices

import (
	"strings"
	"time"
)

// InvoiceStatus enumerates invoice review states.
type InvoiceStatus string

const (
	StatusPending  InvoiceStatus = "PENDING"
	StatusApproved InvoiceStatus = "APPROVED"
)

// Invoice model.
type Invoice struct {
	ID            int64
	VendorID      *int64
	SupplierName  *string
	SupplierGSTIN *string
	InvoiceNo     string
	InvoiceDate   *time.Time
	Subtotal      float64
	Tax           float64
	Total         float64
	Status        InvoiceStatus
	CreatedAt     time.Time
}

// InvoiceItem represents a line item on an invoice.
type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	SKU         *string
	Description *string
	Qty         float64
	UnitPrice   float64
	TaxRate     *float64
	LineTotal   float64
}

// InvoiceSummary is the list-view projection of an invoice.
type InvoiceSummary struct {
	ID           int64
	SupplierName *string
	InvoiceNo    string
	Total        float64
	Status       InvoiceStatus
	CreatedAt    time.Time
}

// InvoiceWithItems bundles the invoice header with its line items.
type InvoiceWithItems struct {
	Invoice
	Items []InvoiceItem
}

// --- Input DTOs ---

// ItemInput describes one line item on create or update.
type ItemInput struct {
	SKU         *string
	Description *string
	Qty         float64
	UnitPrice   float64
	TaxRate     *float64
	LineTotal   float64
}

// CreateInvoiceInput for inserting a new invoice with its items.
type CreateInvoiceInput struct {
	VendorID      *int64
	SupplierName  *string
	SupplierGSTIN *string
	InvoiceNo     string
	InvoiceDate   time.Time
	Subtotal      float64
	Tax           float64
	Total         float64
	Status        InvoiceStatus
	Items         []ItemInput
}

// UpdateInvoiceInput replaces the invoice header and all items.
type UpdateInvoiceInput struct {
	SupplierName  *string
	SupplierGSTIN *string
	InvoiceNo     string
	InvoiceDate   *time.Time
	Subtotal      float64
	Tax           float64
	Total         float64
	Status        InvoiceStatus
	Items         []ItemInput
}

// ListInvoicesRequest filters the invoice listing.
type ListInvoicesRequest struct {
	Status InvoiceStatus
	Limit  int
	Offset int
}

// Totals recomputes header amounts from line items: subtotal is the sum of
// qty times unit price, tax applies each line's rate to its base amount.
func Totals(items []InvoiceItem) (subtotal, tax, total float64) {
	for _, item := range items {
		base := item.Qty * item.UnitPrice
		subtotal += base
		if item.TaxRate != nil {
			tax += base * (*item.TaxRate / 100)
		}
	}
	return subtotal, tax, subtotal + tax
}

// NormalizeStatus upper-cases and validates a status value. Empty maps to PENDING.
func NormalizeStatus(value string) (InvoiceStatus, bool) {
	if value == "" {
		return StatusPending, true
	}
	switch InvoiceStatus(strings.ToUpper(value)) {
	case StatusPending:
		return StatusPending, true
	case StatusApproved:
		return StatusApproved, true
	}
	return "", false
}
