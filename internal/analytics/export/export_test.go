package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
)

func TestWriteSummaryCSV(t *testing.T) {
	summary := analytics.Summary{
		MonthlyTotals: []analytics.SeriesPoint{
			{Label: "2025-01", Value: 1180},
			{Label: "2025-02", Value: 2500.5},
		},
		TopSKUs: []analytics.TopSKU{
			{SKU: "SKU-DEMO", TotalQty: 10, Revenue: 1180},
			{SKU: "UNLABELED", TotalQty: 3, Revenue: 90},
		},
		TaxBreakdown: []analytics.TaxBreakdownPoint{
			{TaxRate: 18, TaxAmount: 180},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, summary))

	out := buf.String()
	require.Contains(t, out, "Month,Total")
	require.Contains(t, out, "2025-01,\"1,180.00\"")
	require.Contains(t, out, "SKU,Quantity,Revenue")
	require.Contains(t, out, "SKU-DEMO,10.00,\"1,180.00\"")
	require.Contains(t, out, "Tax Rate,Tax Amount")
	require.Contains(t, out, "18.00,180.00")
}

func TestWriteSummaryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, analytics.Summary{}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "Month,Total", lines[0])
}
