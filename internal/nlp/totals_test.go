package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTotals_LabeledSameLine(t *testing.T) {
	text := "Zwischensumme: 900,00 EUR\nUmsatzsteuer (19%): 171,00 EUR\nRechnungsbetrag (Brutto): 1071,00 EUR"
	got := ExtractTotals(text)

	require.NotNil(t, got.Net)
	require.NotNil(t, got.VAT)
	require.NotNil(t, got.Gross)
	assert.Equal(t, "900.00", got.Net.StringFixed(2))
	assert.Equal(t, "171.00", got.VAT.StringFixed(2))
	assert.Equal(t, "1071.00", got.Gross.StringFixed(2))
	assert.False(t, got.GrossFromLastToken)
	require.Len(t, got.Tokens, 3)
	assert.Equal(t, 2, got.Tokens[2].LineIndex)
	assert.Equal(t, "1071,00", got.Tokens[2].RawText)
}

func TestExtractTotals_ValuesOnFollowingLines(t *testing.T) {
	text := "Nettobetrag\n900,00\nMwSt 19%\n171,00\nBrutto\n1.071,00"
	got := ExtractTotals(text)

	require.NotNil(t, got.Net)
	assert.Equal(t, "900.00", got.Net.StringFixed(2))
	assert.Equal(t, "171.00", got.VAT.StringFixed(2))
	assert.Equal(t, "1071.00", got.Gross.StringFixed(2))
}

func TestExtractTotals_GrossFallsBackToLastToken(t *testing.T) {
	got := ExtractTotals("Beratung 100,00\nReisekosten 19,00")

	assert.Nil(t, got.Net)
	assert.Nil(t, got.VAT)
	require.NotNil(t, got.Gross)
	assert.Equal(t, "19.00", got.Gross.StringFixed(2))
	assert.True(t, got.GrossFromLastToken)
}

func TestExtractTotals_TaxNumberLineIsNotVAT(t *testing.T) {
	text := "Steuernummer: 12/345/67890\nPosition 50,00\nUmsatzsteuer 9,50\nGesamtbetrag 59,50"
	got := ExtractTotals(text)

	require.NotNil(t, got.VAT)
	assert.Equal(t, "9.50", got.VAT.StringFixed(2))
	assert.Equal(t, "59.50", got.Gross.StringFixed(2))
}

func TestExtractTotals_Empty(t *testing.T) {
	got := ExtractTotals("")
	assert.Nil(t, got.Net)
	assert.Nil(t, got.VAT)
	assert.Nil(t, got.Gross)
	assert.Empty(t, got.Tokens)

	got = ExtractTotals("Vielen Dank")
	assert.Nil(t, got.Gross)
	assert.False(t, got.GrossFromLastToken)
}
