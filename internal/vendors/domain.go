package vendors

import "time"

// Vendor is a supplier master record. Extraction links invoices to vendors
// by GSTIN when one is present on the document.
type Vendor struct {
	ID        int64
	Name      string
	GSTIN     *string
	Rating    *float64
	RiskScore *float64
	CreatedAt time.Time
}

// CreateVendorInput for registering a vendor.
type CreateVendorInput struct {
	Name      string
	GSTIN     *string
	Rating    *float64
	RiskScore *float64
}
