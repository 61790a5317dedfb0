package nlp

import (
	"regexp"
	"strings"
)

var (
	reStran   = regexp.MustCompile(`(?i)\bStran\b`)
	reStrasse = regexp.MustCompile(`(?i)\bStrasse\b`)
	reStrAbbr = regexp.MustCompile(`(?i)\bStr\b\.?`)
)

var punctuationFixer = strings.NewReplacer(
	"\u00a0", " ",
	"\u2018", `"`,
	"\u2019", `"`,
	"\u201c", `"`,
	"\u201d", `"`,
)

// Normalize fixes common OCR artifacts before any pattern matching runs:
// protected spaces, typographic quotes, street abbreviation typos and
// I/O read in place of 1/0 in front of a digit.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = punctuationFixer.Replace(s)
	s = reStran.ReplaceAllString(s, "Str.")
	s = reStrasse.ReplaceAllString(s, "Straße")
	s = reStrAbbr.ReplaceAllString(s, "Str.")
	return fixDigitConfusions(s)
}

// fixDigitConfusions rewrites I->1 and O->0 when followed by a digit.
// Scanning right to left lets runs such as "IO5" settle in one pass.
func fixDigitConfusions(s string) string {
	if !strings.ContainsAny(s, "IO") {
		return s
	}
	r := []rune(s)
	for i := len(r) - 2; i >= 0; i-- {
		if !isDigit(r[i+1]) {
			continue
		}
		switch r[i] {
		case 'I':
			r[i] = '1'
		case 'O':
			r[i] = '0'
		}
	}
	return string(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// splitLines splits on \n or \r\n, trims each line and drops empty ones.
func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
