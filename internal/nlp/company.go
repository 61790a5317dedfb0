package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// foldName lowercases, strips diacritics and drops every rune that is not
// a letter or digit, so "Müller & Söhne GmbH" and "MULLER SOHNE gmbh" agree.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	folded := folder.String(stripped)
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, folded)
}

// MatchesCompany reports whether p names the operator's own company, either
// by vendor name containment or by equal postal code and city.
func MatchesCompany(p *Party, c *CompanyProfile) bool {
	if p == nil || c == nil {
		return false
	}
	if vname, cname := foldName(p.Name), foldName(c.Name); vname != "" && cname != "" && strings.Contains(vname, cname) {
		return true
	}
	if c.PostalCode == "" || c.City == "" || p.PostalCode == "" || p.City == "" {
		return false
	}
	return c.PostalCode == p.PostalCode && foldName(c.City) == foldName(p.City)
}
