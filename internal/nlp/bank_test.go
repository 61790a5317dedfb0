package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIBAN(t *testing.T) {
	got := NormalizeIBAN("D E 8 9 3 7 0 4 0 0 4 4 0 5 3 2 0 1 3 0 0 0")
	assert.True(t, strings.HasPrefix(got, "DE89"))
	assert.Equal(t, "DE89370400440532013000", got)

	assert.Equal(t, "DE89370400440532013000", NormalizeIBAN("de89 37O4 0044 0532 0I30 00"))
	// country code is left alone, short input is only cleaned
	assert.Equal(t, "OI12", NormalizeIBAN("oi-12"))
	assert.Equal(t, "", NormalizeIBAN(" - "))
}

func TestValidIBAN(t *testing.T) {
	assert.True(t, ValidIBAN("DE89370400440532013000"))
	assert.True(t, ValidIBAN("GB82WEST12345698765432"))
	assert.False(t, ValidIBAN("DE00370400440532013000"))
	assert.False(t, ValidIBAN("ZWISCHENSUMME"))
}

func TestExtractBankDetails_Labeled(t *testing.T) {
	got := ExtractBankDetails("IBAN: DE89 3704 0044 0532 0130 00 BIC: COBADEFFXXX")
	assert.True(t, strings.HasPrefix(got.IBAN, "DE89"))
	assert.Equal(t, "DE89370400440532013000", got.IBAN)
	assert.Equal(t, "COBADEFFXXX", got.BIC)
}

func TestExtractBankDetails_LowercaseLabels(t *testing.T) {
	got := ExtractBankDetails("iban de89370400440532013000\nbic: cobadeffxxx")
	assert.Equal(t, "DE89370400440532013000", got.IBAN)
	assert.Equal(t, "COBADEFFXXX", got.BIC)
}

func TestExtractBankDetails_Generic(t *testing.T) {
	b, ev := extractBank("Bitte zahlen an DE89370400440532013000 bei der Commerzbank COBADEFFXXX")
	assert.Equal(t, "DE89370400440532013000", b.IBAN)
	assert.Equal(t, "COBADEFFXXX", b.BIC)
	assert.False(t, ev.ibanLabeled)
	assert.False(t, ev.bicLabeled)
}

func TestExtractBankDetails_Absent(t *testing.T) {
	assert.Equal(t, BankDetails{}, ExtractBankDetails(""))
	assert.Equal(t, BankDetails{}, ExtractBankDetails("Vielen Dank für Ihren Auftrag"))
}

func TestASCIIOnly(t *testing.T) {
	assert.Equal(t, "Stra e 1", asciiOnly("Straße 1"))
}
