package nlp

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// Field is one flat name/value pair shown in the review UI. Confidence is
// presence based, not a calibrated probability.
type Field struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

const (
	confidenceAbsent   = 0.2
	confidenceFallback = 0.5
)

// Fields projects p into the flat field list in constants.FieldOrder.
func (p Prediction) Fields() []Field {
	vendor, recipient := p.Vendor, p.Recipient
	if vendor == nil {
		vendor = &Party{}
	}
	if recipient == nil {
		recipient = &Party{}
	}
	vendorGuess := p.HasWarning(WarnVendorFromHeader)
	recipientGuess := p.HasWarning(WarnRecipientByPostal) || p.HasWarning(WarnRecipientByMidpoint)

	var items string
	if len(p.Items) > 0 {
		b, _ := json.Marshal(p.Items)
		items = string(b)
	}
	city := strings.TrimSpace(vendor.PostalCode + " " + vendor.City)

	return []Field{
		field(constants.FieldInvoiceNo, p.InvoiceNumber, 0.95, false),
		field(constants.FieldInvoiceDate, p.IssueDate, 0.9, false),
		field(constants.FieldSupplierName, vendor.Name, 0.9, vendorGuess),
		field(constants.FieldSupplierAddress, vendor.Raw, 0.8, vendorGuess),
		field(constants.FieldSupplierAddressStreet, vendor.Street, 0.8, vendorGuess),
		field(constants.FieldSupplierAddressCity, city, 0.8, vendorGuess),
		field(constants.FieldRecipientName, recipient.Name, 0.9, recipientGuess),
		field(constants.FieldRecipientAddress, recipient.Raw, 0.8, recipientGuess),
		field(constants.FieldItems, items, 0.85, false),
		field(constants.FieldTotalNet, formatAmount(p.Totals.Net), 0.8, false),
		field(constants.FieldTotalGross, formatAmount(p.GrossTotal), 0.8, p.Totals.GrossFromLastToken),
		field(constants.FieldVATAmount, formatAmount(p.Totals.VAT), 0.8, false),
		field(constants.FieldTaxID, p.TaxID, 0.85, false),
		field(constants.FieldIBAN, p.Bank.IBAN, 0.9, p.HasWarning(WarnIBANChecksum)),
		field(constants.FieldBIC, p.Bank.BIC, 0.9, p.HasWarning(WarnBICUnlabeled)),
	}
}

func field(name, value string, present float64, guessed bool) Field {
	switch {
	case value == "":
		return Field{Name: name, Value: "", Confidence: confidenceAbsent}
	case guessed:
		return Field{Name: name, Value: value, Confidence: confidenceFallback}
	}
	return Field{Name: name, Value: value, Confidence: present}
}

func formatAmount(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// FieldValues indexes fields by name.
func FieldValues(fields []Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}
