package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b|\b20\d{2}-\d{2}-\d{2}\b`)
	reCurr    = regexp.MustCompile(`\b(eur|usd|chf|gbp)\b|€`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*,\d{2}\b|\b\d+\.\d{2}\b`)
	reKeyword = regexp.MustCompile(`rechnung|invoice|iban|ust|mwst`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }

// heuristicConfidence scores how invoice-like the acquired text looks.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if reKeyword.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
