package nlp

import (
	"regexp"
	"strings"
)

var (
	reIBANLabeled   = regexp.MustCompile(`(?i)IBAN[:\s]*([A-Z0-9 \-]{8,40})`)
	reIBANGeneric   = regexp.MustCompile(`(?i)\b[A-Z]{2}\d{2}[A-Z0-9]{8,28}\b`)
	reBICLabeled    = regexp.MustCompile(`(?i)BIC[:\s]*([A-Z0-9]{8,11})`)
	reBICGeneric    = regexp.MustCompile(`\b[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`)
	// a labeled IBAN capture may run into the next label on the same line
	reBankLabelTail = regexp.MustCompile(`(?i)\s(BIC|SWIFT|BLZ|BANK|KTO)\b`)
	reNonAlnum      = regexp.MustCompile(`[^A-Z0-9]`)
	reIBANShape     = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{8,30}$`)
)

// NormalizeIBAN uppercases s, strips everything but letters and digits and
// maps O->0 and I->1 after the country code. The cleaned string is returned
// even when it does not have the shape of an IBAN.
func NormalizeIBAN(s string) string {
	s = reNonAlnum.ReplaceAllString(strings.ToUpper(s), "")
	if len(s) > 4 {
		rest := strings.NewReplacer("O", "0", "I", "1").Replace(s[2:])
		s = s[:2] + rest
	}
	return s
}

// LooksLikeIBAN reports whether s has the canonical IBAN shape.
func LooksLikeIBAN(s string) bool { return reIBANShape.MatchString(s) }

// ValidIBAN reports whether s passes the ISO 7064 mod-97 check.
func ValidIBAN(s string) bool {
	if !LooksLikeIBAN(s) || len(s) > 34 {
		return false
	}
	rearranged := s[4:] + s[:4]
	rem := 0
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			rem = (rem*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			rem = (rem*100 + int(r-'A') + 10) % 97
		default:
			return false
		}
	}
	return rem == 1
}

type bankEvidence struct {
	ibanLabeled bool
	bicLabeled  bool
}

// ExtractBankDetails finds IBAN and BIC in text, preferring labeled
// occurrences over generic shaped tokens.
func ExtractBankDetails(text string) BankDetails {
	b, _ := extractBank(text)
	return b
}

func extractBank(text string) (BankDetails, bankEvidence) {
	var (
		b  BankDetails
		ev bankEvidence
	)
	if text == "" {
		return b, ev
	}

	if m := reIBANLabeled.FindStringSubmatch(text); m != nil {
		capture := m[1]
		if loc := reBankLabelTail.FindStringIndex(capture); loc != nil {
			capture = capture[:loc[0]]
		}
		if iban := NormalizeIBAN(capture); iban != "" {
			b.IBAN, ev.ibanLabeled = iban, true
		}
	}
	if b.IBAN == "" {
		if m := reIBANGeneric.FindString(text); m != "" {
			b.IBAN = NormalizeIBAN(m)
		}
	}

	if m := reBICLabeled.FindStringSubmatch(text); m != nil {
		b.BIC, ev.bicLabeled = strings.ToUpper(m[1]), true
	}
	if b.BIC == "" {
		if m := reBICGeneric.FindString(text); m != "" {
			b.BIC = m
		}
	}
	return b, ev
}

// asciiOnly replaces every non-ASCII rune with a space.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7f {
			return ' '
		}
		return r
	}, s)
}
