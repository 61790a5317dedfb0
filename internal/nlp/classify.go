package nlp

import (
	"regexp"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

var (
	reOutgoingStrong = regexp.MustCompile(`(?i)rechnung an|rechnungsempfänger|empfänger:|bill to|invoice to|kunde:|customer:`)
	reIncomingStrong = regexp.MustCompile(`(?i)rechnung von|rechnungsteller|lieferant:|vendor:|invoice from|lieferant von`)
	reOutgoingWeak   = regexp.MustCompile(`(?i)rechnung an[:\s]|kunde[:\s]`)
	reIncomingWeak   = regexp.MustCompile(`(?i)lieferant[:\s]|rechnung von[:\s]`)
)

// Classify labels a document as outgoing or incoming from keyword cues.
// Outgoing cues win over incoming ones; strong cues are checked before weak.
func Classify(text string) constants.Classification {
	switch {
	case reOutgoingStrong.MatchString(text):
		return constants.Outgoing
	case reIncomingStrong.MatchString(text):
		return constants.Incoming
	case reOutgoingWeak.MatchString(text):
		return constants.Outgoing
	case reIncomingWeak.MatchString(text):
		return constants.Incoming
	}
	return constants.Undetermined
}
