package nlp

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reAmountChars = regexp.MustCompile(`[^0-9,.\-]`)
	reFloatPrefix = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)
	// grouped triplets ("1.234,56", "1 234,56") or a plain digit run
	// ("1071,00", "1234.56") followed by two decimals
	reAmount = regexp.MustCompile(`(?:\d{1,3}(?:[.\s]\d{3})+|\d+)[.,]\d{2}`)
)

// ParseAmount converts a locale ambiguous token into a decimal value.
// When both separators occur "." is the thousands and "," the decimal
// separator; a lone "," is a decimal separator. Parsing stops at the first
// character that cannot continue a number. ok is false for tokens without
// a leading number.
func ParseAmount(token string) (decimal.Decimal, bool) {
	t := strings.TrimSpace(reAmountChars.ReplaceAllString(token, ""))
	if t == "" {
		return decimal.Zero, false
	}
	hasDot, hasComma := strings.Contains(t, "."), strings.Contains(t, ",")
	switch {
	case hasDot && hasComma:
		t = strings.ReplaceAll(t, ".", "")
		t = strings.ReplaceAll(t, ",", ".")
	case hasComma:
		t = strings.ReplaceAll(t, ",", ".")
	}
	prefix := reFloatPrefix.FindString(t)
	if prefix == "" {
		return decimal.Zero, false
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if strings.HasPrefix(prefix, "-.") {
		prefix = "-0" + prefix[1:]
	} else if strings.HasPrefix(prefix, ".") {
		prefix = "0" + prefix
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountMatch is one amount shaped substring of a line.
type AmountMatch struct {
	Text  string
	Start int
	End   int
	Value decimal.Decimal
}

// FindAmounts returns every amount shaped substring of line in order.
func FindAmounts(line string) []AmountMatch {
	locs := reAmount.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]AmountMatch, 0, len(locs))
	for _, loc := range locs {
		text := line[loc[0]:loc[1]]
		v, ok := ParseAmount(text)
		if !ok {
			continue
		}
		out = append(out, AmountMatch{Text: text, Start: loc[0], End: loc[1], Value: v})
	}
	return out
}

func amountValues(ms []AmountMatch) []decimal.Decimal {
	if len(ms) == 0 {
		return nil
	}
	out := make([]decimal.Decimal, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
