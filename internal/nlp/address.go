package nlp

import (
	"regexp"
	"strings"
)

var (
	rePostalLine = regexp.MustCompile(`\b\d{5}\b`)
	rePostalCity = regexp.MustCompile(`(\d{5})\s+(.+)$`)
)

// ParseAddress splits an address block into name, street, postal code and
// city, anchored on the first line carrying a 5-digit postal code. Without
// one the second and third lines are taken as street and city. It returns
// nil only for a blank block.
func ParseAddress(block string) *Party {
	if strings.TrimSpace(block) == "" {
		return nil
	}
	p := &Party{Raw: block}
	lines := splitLines(Normalize(block))
	if len(lines) > 0 {
		p.Name = lines[0]
	}

	postalIdx := -1
	for i, l := range lines {
		if rePostalLine.MatchString(l) {
			postalIdx = i
			break
		}
	}
	if postalIdx >= 0 {
		if m := rePostalCity.FindStringSubmatch(lines[postalIdx]); m != nil {
			p.PostalCode = m[1]
			p.City = strings.TrimSpace(m[2])
		}
		if postalIdx >= 1 {
			p.Street = lines[postalIdx-1]
		}
	} else {
		if len(lines) >= 2 {
			p.Street = lines[1]
		}
		if len(lines) >= 3 {
			p.City = lines[2]
		}
	}
	return p
}

// postalLineIndices returns the indices of lines carrying a postal code.
func postalLineIndices(lines []string) []int {
	var idx []int
	for i, l := range lines {
		if rePostalLine.MatchString(l) {
			idx = append(idx, i)
		}
	}
	return idx
}
