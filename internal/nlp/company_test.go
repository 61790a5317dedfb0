package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldName(t *testing.T) {
	assert.Equal(t, "mullersohnegmbh", foldName("Müller & Söhne GmbH"))
	assert.Equal(t, foldName("MULLER SOHNE gmbh"), foldName("Müller & Söhne GmbH"))
}

func TestMatchesCompany(t *testing.T) {
	company := &CompanyProfile{Name: "Mustergesellschaft mbH", PostalCode: "12345", City: "Musterstadt"}

	assert.True(t, MatchesCompany(&Party{Name: "MUSTERGESELLSCHAFT MBH Niederlassung Süd"}, company))
	assert.True(t, MatchesCompany(&Party{Name: "Filiale", PostalCode: "12345", City: "musterstadt"}, company))
	assert.False(t, MatchesCompany(&Party{Name: "Filiale", PostalCode: "12345", City: "Anderswo"}, company))
	assert.False(t, MatchesCompany(&Party{Name: "Andere GmbH"}, company))
	assert.False(t, MatchesCompany(nil, company))
	assert.False(t, MatchesCompany(&Party{Name: "Mustergesellschaft mbH"}, nil))
	assert.False(t, MatchesCompany(&Party{Name: "X"}, &CompanyProfile{}))
}
