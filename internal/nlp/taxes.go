package nlp

import (
	"regexp"
	"strings"
)

var (
	reTaxRate = regexp.MustCompile(`(\d{1,2})%[^\d\n\r]*((?:\d{1,3}(?:[. ]\d{3})+|\d+)[.,]\d{2})`)
	reTaxID   = regexp.MustCompile(`(?i)(Steuernummer|Steuer-Nr\.?|USt-IdNr\.?|Umsatzsteuer-Id(?:nr)?|USt-Id)[\s:]*([A-Z0-9][A-Z0-9\-/ \t]*)`)
)

// ExtractTaxBreakdown returns every "rate% ... amount" pair in document order.
func ExtractTaxBreakdown(text string) []TaxEntry {
	entries := []TaxEntry{}
	for _, m := range reTaxRate.FindAllStringSubmatch(text, -1) {
		amount, ok := ParseAmount(m[2])
		if !ok {
			continue
		}
		entries = append(entries, TaxEntry{Rate: m[1] + "%", Amount: amount})
	}
	return entries
}

// ExtractTaxID returns the value following the first tax number or VAT id
// label, limited to the label's line.
func ExtractTaxID(text string) string {
	m := reTaxID.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}
