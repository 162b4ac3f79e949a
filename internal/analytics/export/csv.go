// Package export serialises analytics aggregates for download.
package export

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
)

var printer = message.NewPrinter(language.English)

// WriteSummaryCSV serialises the dashboard summary to CSV. Sections are
// separated by a blank record so the file stays readable in a spreadsheet.
func WriteSummaryCSV(w io.Writer, summary analytics.Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Month", "Total"}); err != nil {
		return err
	}
	for _, point := range summary.MonthlyTotals {
		if err := writer.Write([]string{point.Label, formatFloat(point.Value)}); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{}); err != nil {
		return err
	}
	if err := writer.Write([]string{"SKU", "Quantity", "Revenue"}); err != nil {
		return err
	}
	for _, sku := range summary.TopSKUs {
		if err := writer.Write([]string{
			sku.SKU,
			formatFloat(sku.TotalQty),
			formatFloat(sku.Revenue),
		}); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{}); err != nil {
		return err
	}
	if err := writer.Write([]string{"Tax Rate", "Tax Amount"}); err != nil {
		return err
	}
	for _, point := range summary.TaxBreakdown {
		if err := writer.Write([]string{
			formatFloat(point.TaxRate),
			formatFloat(point.TaxAmount),
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(value float64) string {
	return printer.Sprintf("%.2f", value)
}
