package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"protected space", "Musterstadt\u00a012345", "Musterstadt 12345"},
		{"smart quotes", "\u201cFirma\u201d \u2018X\u2019", `"Firma" "X"`},
		{"stran typo", "Lange Stran 5", "Lange Str. 5"},
		{"strasse", "Lange Strasse 5", "Lange Straße 5"},
		{"bare str", "Ring Str 4", "Ring Str. 4"},
		{"str with dot kept", "Ring Str. 4", "Ring Str. 4"},
		{"letter O before digit", "DE89 37O4", "DE89 3704"},
		{"letter I before digit", "Kto I23", "Kto 123"},
		{"chained confusion", "Nr IO5", "Nr 105"},
		{"no digit follows", "OTTO IMMO", "OTTO IMMO"},
		{"compound street untouched", "Musterstran 12", "Musterstran 12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"",
		"Rechnung Nr. IO5\nOI5 OO1",
		"Lange Stran Strasse Str Str. str.",
		"\u201cIBAN\u201d: DE89 37O4 OO44 O532 O13O OO",
		"Musterstr. 11\n12345 Musterstadt",
		"STRASSE STRAN STR",
	}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, splitLines("  a \r\n\n\tb c\n   \n"))
	assert.Empty(t, splitLines(""))
}
