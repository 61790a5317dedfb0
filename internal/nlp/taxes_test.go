package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTaxBreakdown(t *testing.T) {
	got := ExtractTaxBreakdown("7% auf 100,00\nUSt 19% 1.140,00\nRabatt 5%")

	require.Len(t, got, 2)
	assert.Equal(t, "7%", got[0].Rate)
	assert.Equal(t, "100.00", got[0].Amount.StringFixed(2))
	assert.Equal(t, "19%", got[1].Rate)
	assert.Equal(t, "1140.00", got[1].Amount.StringFixed(2))
}

func TestExtractTaxID(t *testing.T) {
	cases := map[string]string{
		"Steuernummer: 12/345/67890\nIBAN": "12/345/67890",
		"USt-IdNr.: DE123456789":           "DE123456789",
		"Umsatzsteuer-IdNr DE 123 456 789": "DE 123 456 789",
		"Steuer-Nr. 21/815/08150":          "21/815/08150",
		"Keine Angabe":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractTaxID(in), "input %q", in)
	}
}
