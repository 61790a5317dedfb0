package nlp

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

var (
	reInvoiceNo = regexp.MustCompile(`(?i)(INV|Rechnungsnr\.?|Rechnung\s?Nr\.?)[^\d\n]*([0-9\-/\w]+)`)
	reIssueDate = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}|\d{4}-\d{2}-\d{2}`)
	reTopTotal  = regexp.MustCompile(`(?i)(Gesamtbetrag|Total|Summe|Bruttobetrag)[^\d,]*(\d+[\d.]*[,.]\d{2})`)

	reVendorCue    = regexp.MustCompile(`(?i)rechnung von|lieferant|rechnungssteller|from:`)
	reRecipientCue = regexp.MustCompile(`(?i)rechnung an|rechnungsempfänger|empfänger|bill to|invoice to`)
)

const (
	blockLines  = 4
	headerLines = 8
	sampleRunes = 1000

	confidenceTotalFound = 0.8
	confidenceNoTotal    = 0.45
)

// Extract runs every heuristic over doc and assembles a Prediction. company
// may be nil; when set, a vendor matching it is flagged as own company.
func Extract(doc Document, company *CompanyProfile) Prediction {
	text := Normalize(doc.Text())
	p := Prediction{
		Classification: Classify(text),
		Currency:       constants.DefaultCurrency,
		Source:         constants.ExtractorSource,
		Warnings:       []string{},
	}

	if m := reInvoiceNo.FindStringSubmatch(text); m != nil {
		p.InvoiceNumber = m[2]
	}
	p.IssueDate = reIssueDate.FindString(text)
	topTotal, hasTopTotal := matchTopTotal(text)

	lines := splitLines(text)
	vendorBlock := captureBlockAfter(lines, reVendorCue)
	if vendorBlock == "" {
		vendorBlock = strings.Join(lines[:min(headerLines, len(lines))], "\n")
		if vendorBlock != "" {
			p.warn(WarnVendorFromHeader)
		}
	}
	recipientBlock := captureBlockAfter(lines, reRecipientCue)
	if recipientBlock == "" {
		var how string
		vendorBlock, recipientBlock, how = splitHeader(vendorBlock)
		p.warn(how)
	}
	p.Vendor = ParseAddress(vendorBlock)
	p.Recipient = ParseAddress(recipientBlock)

	bank, ev := extractBank(asciiOnly(text))
	p.Bank = bank
	if p.Vendor != nil {
		p.Vendor.IBAN = bank.IBAN
		p.Vendor.BIC = bank.BIC
	}
	if bank.IBAN != "" {
		if !ev.ibanLabeled {
			p.warn(WarnIBANUnlabeled)
		}
		if !ValidIBAN(bank.IBAN) {
			p.warn(WarnIBANChecksum)
		}
	}
	if bank.BIC != "" && !ev.bicLabeled {
		p.warn(WarnBICUnlabeled)
	}

	if company != nil && MatchesCompany(p.Vendor, company) {
		p.Vendor.IsOwnCompany = true
	}

	p.TaxID = ExtractTaxID(text)
	p.Items = ParseItems(text)
	p.TaxBreakdown = ExtractTaxBreakdown(text)
	p.Totals = ExtractTotals(text)
	if p.Totals.GrossFromLastToken {
		p.warn(WarnGrossFromLastToken)
	}

	switch {
	case p.Totals.Gross != nil:
		p.GrossTotal = p.Totals.Gross
	case hasTopTotal:
		p.GrossTotal = ptr(topTotal)
	}

	p.Confidence = confidenceNoTotal
	if hasTopTotal {
		p.Confidence = confidenceTotalFound
	}
	p.RawTextSample = sample(text, sampleRunes)
	return p
}

func (p *Prediction) warn(w string) {
	if w != "" && !p.HasWarning(w) {
		p.Warnings = append(p.Warnings, w)
	}
}

func matchTopTotal(text string) (decimal.Decimal, bool) {
	m := reTopTotal.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	return ParseAmount(m[2])
}

// captureBlockAfter returns up to blockLines lines following the first line
// matching cue, or "" when no line matches.
func captureBlockAfter(lines []string, cue *regexp.Regexp) string {
	for i, l := range lines {
		if cue.MatchString(l) {
			end := min(i+1+blockLines, len(lines))
			return strings.Join(lines[i+1:end], "\n")
		}
	}
	return ""
}

// splitHeader divides a two column header into vendor and recipient: after
// the first postal code line when there are two of them, else at the
// midpoint of four or more lines. The warning names the rule used.
func splitHeader(block string) (vendor, recipient, warning string) {
	top := splitLines(block)
	if zips := postalLineIndices(top); len(zips) >= 2 {
		at := zips[0] + 1
		return strings.Join(top[:at], "\n"), strings.Join(top[at:], "\n"), WarnRecipientByPostal
	}
	if len(top) >= 4 {
		mid := (len(top) + 1) / 2
		return strings.Join(top[:mid], "\n"), strings.Join(top[mid:], "\n"), WarnRecipientByMidpoint
	}
	return block, "", ""
}

func sample(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
