package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var parseNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

const sampleText = `Acme Supplies Pvt Ltd
29ABCDE1234F1Z5
Invoice Number: INV-2025-042
Date: 14/03/2025
Tax 162.00
Total Amount Due 1,062.00
Subtotal 900.00`

func TestParseTextExtractsFields(t *testing.T) {
	result := ParseText(sampleText, parseNow)

	require.NotNil(t, result.SupplierName)
	require.Equal(t, "Acme Supplies Pvt Ltd", *result.SupplierName)
	require.NotNil(t, result.SupplierGSTIN)
	require.Equal(t, "29ABCDE1234F1Z5", *result.SupplierGSTIN)
	require.Equal(t, "INV-2025-042", result.InvoiceNo)
	require.Equal(t, "2025-03-14", result.InvoiceDate)
	require.InDelta(t, 900, result.Subtotal, 0.001)
	require.InDelta(t, 162, result.Tax, 0.001)
	require.InDelta(t, 1062, result.Total, 0.001)
	require.Len(t, result.Items, 1)
	require.Equal(t, "OCR-DETECTED", *result.Items[0].SKU)
	require.InDelta(t, 18, result.Items[0].TaxRate, 0.001)
}

func TestParseTextDefaults(t *testing.T) {
	result := ParseText("just one meaningless line", parseNow)

	require.Equal(t, "AUTO-20250314103000", result.InvoiceNo)
	require.Equal(t, "2025-03-14", result.InvoiceDate)
	require.Zero(t, result.Subtotal)
	require.Zero(t, result.Tax)
	require.Zero(t, result.Total)
	require.Len(t, result.Items, 1)
}

func TestParseTextCommaAmounts(t *testing.T) {
	result := ParseText("Total 1,234.50", parseNow)
	require.InDelta(t, 1234.5, result.Total, 0.001)
}

func TestParseTextSkipsInvoiceHeadingForSupplier(t *testing.T) {
	result := ParseText("TAX INVOICE\nGlobex Traders\nTotal 500", parseNow)

	require.NotNil(t, result.SupplierName)
	require.Equal(t, "Globex Traders", *result.SupplierName)
}

func TestNormalizeDateLayouts(t *testing.T) {
	cases := map[string]string{
		"14/03/2025": "2025-03-14",
		"14-03-2025": "2025-03-14",
		"14/03/25":   "2025-03-14",
		"14-03-25":   "2025-03-14",
		"2025-03-14": "2025-03-14",
		"garbage":    "",
	}
	for input, want := range cases {
		require.Equal(t, want, normalizeDate(input), "input %q", input)
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	result := Fallback(parseNow)

	require.Equal(t, "Acme Supplies", *result.SupplierName)
	require.Equal(t, "29ABCDE1234F1Z5", *result.SupplierGSTIN)
	require.Equal(t, "AUTO-20250314103000", result.InvoiceNo)
	require.InDelta(t, 1000, result.Subtotal, 0.001)
	require.InDelta(t, 180, result.Tax, 0.001)
	require.InDelta(t, 1180, result.Total, 0.001)
	require.Len(t, result.Items, 1)
	require.Equal(t, "SKU-DEMO", *result.Items[0].SKU)
}
