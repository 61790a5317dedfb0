package constants

import "strings"

// Classification tells whether an invoice was issued by or to the operator.
type Classification string

const (
	Outgoing     Classification = "OUTGOING"
	Incoming     Classification = "INCOMING"
	Undetermined Classification = "UNKNOWN"
)

var allClassifications = []Classification{Outgoing, Incoming, Undetermined}

func ClassificationsAsStrings() []string {
	result := make([]string, len(allClassifications))
	for i, c := range allClassifications {
		result[i] = string(c)
	}
	return result
}

// CanonicalizeClassification maps stored or user supplied labels onto a
// Classification. Unknown input yields Undetermined and false.
func CanonicalizeClassification(input string) (Classification, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Undetermined, false
	}

	synonyms := map[string]Classification{
		"ausgang":         Outgoing,
		"ausgehend":       Outgoing,
		"eingang":         Incoming,
		"eingehend":       Incoming,
		"undetermined":    Undetermined,
		"unklassifiziert": Undetermined,
	}
	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	for _, c := range allClassifications {
		if normalized == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return Undetermined, false
}
