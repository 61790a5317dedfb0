package nlp

import (
	"regexp"
	"strings"
)

var (
	reNetLabel   = regexp.MustCompile(`(?i)zwischensumme|netto|nettobetrag`)
	reVATLabel   = regexp.MustCompile(`(?i)umsatzsteuer|\bust\b|mwst|mehrwertsteuer|steuer`)
	reGrossLabel = regexp.MustCompile(`(?i)rechnungsbetrag|brutto|gesamtbetrag|betrag\s*brutto|rechnungssumme`)
	// tax registration labels mention "Steuer" but never carry the VAT amount
	reTaxIDLabel = regexp.MustCompile(`(?i)steuernummer|steuer-nr|ust-id|umsatzsteuer-id`)
)

var mojibakeFixer = strings.NewReplacer(
	"\u00d4\u00e9\u00bc", "",
	"\u00e2\u201a\u00ac", "",
	"\u00a0", " ",
)

// ExtractTotals finds net, VAT and gross amounts. Every amount shaped
// substring becomes a NumericToken; a labeled line takes the first token on
// that line or any later line. Without a gross label the last token wins.
func ExtractTotals(text string) Totals {
	t := Totals{Tokens: []NumericToken{}}
	if text == "" {
		return t
	}
	lines := splitLines(mojibakeFixer.Replace(text))
	for i, line := range lines {
		for _, m := range FindAmounts(line) {
			t.Tokens = append(t.Tokens, NumericToken{LineIndex: i, RawText: m.Text, Value: m.Value})
		}
	}

	for i, line := range lines {
		if t.Net == nil && reNetLabel.MatchString(line) {
			next := t.tokensFrom(i)
			if len(next) > 0 {
				t.Net = ptr(next[0].Value)
			}
			if len(next) > 1 && t.VAT == nil {
				t.VAT = ptr(next[1].Value)
			}
		}
		if t.VAT == nil && reVATLabel.MatchString(line) && !reTaxIDLabel.MatchString(line) {
			if next := t.tokensFrom(i); len(next) > 0 {
				t.VAT = ptr(next[0].Value)
			}
		}
		if t.Gross == nil && reGrossLabel.MatchString(line) {
			if next := t.tokensFrom(i); len(next) > 0 {
				t.Gross = ptr(next[0].Value)
			}
		}
	}

	if t.Gross == nil && len(t.Tokens) > 0 {
		t.Gross = ptr(t.Tokens[len(t.Tokens)-1].Value)
		t.GrossFromLastToken = true
	}
	return t
}

// tokensFrom returns the tokens on line i and every later line.
func (t Totals) tokensFrom(i int) []NumericToken {
	for k, tok := range t.Tokens {
		if tok.LineIndex >= i {
			return t.Tokens[k:]
		}
	}
	return nil
}
