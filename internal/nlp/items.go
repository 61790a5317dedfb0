package nlp

import (
	"regexp"
	"strings"
)

var (
	reItemsStart = regexp.MustCompile(`(?i)beschreibung|positions|positionen|menge|einheit`)
	reItemsEnd   = regexp.MustCompile(`(?i)zwischensumme|rechnungsbetrag|brutto|gesamtbetrag|summe`)
	reHeaderEcho = regexp.MustCompile(`(?i)^(menge|einheit|einzelpreis|gesamt(\s*\(.*\))?|beschreibung|pos\.?)$`)
	reSpaceRun   = regexp.MustCompile(`[\t ]+`)
)

var itemTextFixer = strings.NewReplacer(
	"\u00d4\u00e9\u00bc", "",
	"\u00e2\u201a\u00ac", "",
	"\u00a0", " ",
	"\u2018", "'",
	"\u2019", "'",
)

// ParseItems segments the goods/services table into line items.
//
// The window starts after the first header line (a line naming
// Beschreibung, Positionen, Menge or Einheit) and ends before the first
// summary line after it. Per line: two or more amounts give unit price and
// line total, a single amount gives the line total, and a line without
// amounts is merged with the next line when that one carries amounts.
func ParseItems(text string) []LineItem {
	items := []LineItem{}
	if text == "" {
		return items
	}
	lines := splitLines(itemTextFixer.Replace(text))

	start := 0
	for i, l := range lines {
		if reItemsStart.MatchString(l) {
			start = i
			if len(FindAmounts(l)) == 0 {
				start = i + 1
			}
			break
		}
	}
	end := len(lines)
	for i := start; i < len(lines); i++ {
		if reItemsEnd.MatchString(lines[i]) {
			end = i
			break
		}
	}

	for i := start; i < end; i++ {
		line := lines[i]
		if reHeaderEcho.MatchString(line) {
			continue
		}
		amounts := FindAmounts(line)
		switch {
		case len(amounts) >= 2:
			items = append(items, LineItem{
				Raw:         line,
				Description: collapseSpaces(line[:amounts[0].Start]),
				UnitPrice:   ptr(amounts[0].Value),
				LineTotal:   ptr(amounts[1].Value),
				Amounts:     amountValues(amounts),
			})
		case len(amounts) == 1:
			desc := collapseSpaces(line[:amounts[0].Start] + line[amounts[0].End:])
			if desc == "" && i > start {
				desc = lines[i-1]
			}
			items = append(items, LineItem{
				Raw:         line,
				Description: desc,
				LineTotal:   ptr(amounts[0].Value),
				Amounts:     amountValues(amounts),
			})
		case i+1 < end:
			next := lines[i+1]
			nextAmounts := FindAmounts(next)
			if len(nextAmounts) == 0 {
				continue
			}
			item := LineItem{
				Raw:         line + " / " + next,
				Description: line,
				LineTotal:   ptr(nextAmounts[len(nextAmounts)-1].Value),
				Amounts:     amountValues(nextAmounts),
			}
			if len(nextAmounts) >= 2 {
				item.UnitPrice = ptr(nextAmounts[0].Value)
			}
			items = append(items, item)
			i++
		}
	}
	return items
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(reSpaceRun.ReplaceAllString(s, " "))
}
