package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want constants.Classification
	}{
		{"outgoing wins over incoming", "Rechnung an: Foo\nLieferant: Bar", constants.Outgoing},
		{"strong incoming", "Lieferant: Bar GmbH", constants.Incoming},
		{"bill to", "BILL TO: Acme Corp", constants.Outgoing},
		{"invoice from", "Invoice from Acme", constants.Incoming},
		{"weak kunde", "Kunde 4711", constants.Outgoing},
		{"weak lieferant", "Lieferant Bar GmbH", constants.Incoming},
		{"kundennummer is no cue", "Kundennummer 4711", constants.Undetermined},
		{"empty", "", constants.Undetermined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}
