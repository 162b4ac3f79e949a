package extraction

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	gstinRE     = regexp.MustCompile(`\b\d{2}[A-Z]{5}\d{4}[A-Z]\dZ\d\b`)
	invoiceNoRE = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number)?[:\s]*([A-Z0-9\-/]+)`)
	dateRE      = regexp.MustCompile(`\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4}`)
	currencyRE  = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`)

	subtotalLabelRE = regexp.MustCompile(`(?i)sub\s*total`)
	taxLabelRE      = regexp.MustCompile(`(?i)tax|gst`)
	totalLabelRE    = regexp.MustCompile(`(?i)total|amount\s+due`)
)

var dateLayouts = []string{"2/1/2006", "2-1-2006", "2/1/06", "2-1-06", "2006-1-2"}

// ParseText applies label and pattern heuristics to raw OCR text. Missing
// fields get deterministic defaults so the result is always storable.
func ParseText(text string, now time.Time) Result {
	lines := nonEmptyLines(text)

	supplier := guessSupplier(lines)
	gstin := firstMatch(gstinRE, text)

	invoiceNo := firstGroup(invoiceNoRE, text)
	if invoiceNo == "" {
		invoiceNo = "AUTO-" + now.UTC().Format("20060102150405")
	}

	invoiceDate := normalizeDate(firstMatch(dateRE, text))
	if invoiceDate == "" {
		invoiceDate = now.UTC().Format("2006-01-02")
	}

	subtotal := findAmount(lines, subtotalLabelRE)
	tax := findAmount(lines, taxLabelRE)
	total := findAmount(lines, totalLabelRE)
	if total == 0 {
		total = math.Max(subtotal+tax, 0)
	}

	unitPrice := subtotal
	if unitPrice == 0 {
		unitPrice = total
	}
	var taxRate float64
	if total != subtotal {
		taxRate = round2(tax / math.Max(subtotal, 1) * 100)
	}

	return Result{
		SupplierName:  supplier,
		SupplierGSTIN: strPtrOrNil(gstin),
		InvoiceNo:     invoiceNo,
		InvoiceDate:   invoiceDate,
		Subtotal:      round2(subtotal),
		Tax:           round2(tax),
		Total:         round2(total),
		Items: []ResultItem{{
			SKU:         strPtr("OCR-DETECTED"),
			Description: strPtr("Line items pending structured extraction"),
			Qty:         1,
			UnitPrice:   unitPrice,
			TaxRate:     taxRate,
			LineTotal:   total,
		}},
	}
}

// Fallback is the deterministic stub used when no OCR text is available.
func Fallback(now time.Time) Result {
	return Result{
		SupplierName:  strPtr("Acme Supplies"),
		SupplierGSTIN: strPtr("29ABCDE1234F1Z5"),
		InvoiceNo:     "AUTO-" + now.UTC().Format("20060102150405"),
		InvoiceDate:   now.UTC().Format("2006-01-02"),
		Subtotal:      1000,
		Tax:           180,
		Total:         1180,
		Items: []ResultItem{{
			SKU:         strPtr("SKU-DEMO"),
			Description: strPtr("Demo Item"),
			Qty:         10,
			UnitPrice:   100,
			TaxRate:     18,
			LineTotal:   1180,
		}},
	}
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// guessSupplier takes the first letter-bearing line near the top of the
// document that is not the word "invoice" itself.
func guessSupplier(lines []string) *string {
	limit := len(lines)
	if limit > 5 {
		limit = 5
	}
	for _, line := range lines[:limit] {
		if strings.Contains(strings.ToLower(line), "invoice") {
			continue
		}
		if strings.IndexFunc(line, unicode.IsLetter) >= 0 {
			return strPtr(line)
		}
	}
	return nil
}

func firstMatch(re *regexp.Regexp, text string) string {
	return re.FindString(text)
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func findAmount(lines []string, labelRE *regexp.Regexp) float64 {
	for _, line := range lines {
		if !labelRE.MatchString(line) {
			continue
		}
		if raw := currencyRE.FindString(line); raw != "" {
			return parseAmount(raw)
		}
	}
	return 0
}

func parseAmount(value string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func strPtr(s string) *string { return &s }

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
