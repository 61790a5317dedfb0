// Package nlp turns noisy OCR text of German/EU invoices into a structured
// Prediction using keyword anchored regular expressions and positional
// heuristics. Every function in this package is total: unmatched patterns
// yield absent fields, never errors.
package nlp

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/constants"
)

// Party is a vendor or recipient parsed from a header block.
// Raw always holds the block the party was parsed from.
type Party struct {
	Name         string `json:"name,omitempty"`
	Street       string `json:"street,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`
	Raw          string `json:"raw"`
	IBAN         string `json:"iban,omitempty"`
	BIC          string `json:"bic,omitempty"`
	IsOwnCompany bool   `json:"is_own_company,omitempty"`
}

// BankDetails holds IBAN and BIC found anywhere in the document.
type BankDetails struct {
	IBAN string `json:"iban,omitempty"`
	BIC  string `json:"bic,omitempty"`
}

// LineItem is one row of the goods/services table.
type LineItem struct {
	Raw         string            `json:"raw"`
	Description string            `json:"description,omitempty"`
	Quantity    string            `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal  `json:"unit_price,omitempty"`
	LineTotal   *decimal.Decimal  `json:"line_total,omitempty"`
	Amounts     []decimal.Decimal `json:"amounts,omitempty"`
}

// TaxEntry is a "rate + amount" pair such as "19% 171,00".
type TaxEntry struct {
	Rate   string          `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// NumericToken is an amount shaped substring and the line it was found on.
type NumericToken struct {
	LineIndex int             `json:"line_index"`
	RawText   string          `json:"raw_text"`
	Value     decimal.Decimal `json:"value"`
}

// Totals holds net, VAT and gross amounts. GrossFromLastToken reports that
// Gross was not labeled and fell back to the last amount in the document.
type Totals struct {
	Net                *decimal.Decimal `json:"net,omitempty"`
	VAT                *decimal.Decimal `json:"vat,omitempty"`
	Gross              *decimal.Decimal `json:"gross,omitempty"`
	GrossFromLastToken bool             `json:"gross_from_last_token,omitempty"`
	Tokens             []NumericToken   `json:"tokens"`
}

// CompanyProfile describes the operator's own company.
type CompanyProfile struct {
	Name       string `json:"name" yaml:"name"`
	Street     string `json:"street,omitempty" yaml:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	City       string `json:"city,omitempty" yaml:"city,omitempty"`
	TaxID      string `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
}

// Prediction is the result of one extraction. It is never mutated after
// Extract returns; reviewed values live in a separate edited copy.
type Prediction struct {
	Classification constants.Classification `json:"classification"`
	Vendor         *Party                   `json:"vendor,omitempty"`
	Recipient      *Party                   `json:"recipient,omitempty"`
	TaxID          string                   `json:"tax_id,omitempty"`
	Bank           BankDetails              `json:"bank"`
	IssueDate      string                   `json:"issue_date,omitempty"`
	InvoiceNumber  string                   `json:"invoice_number,omitempty"`
	Items          []LineItem               `json:"items"`
	TaxBreakdown   []TaxEntry               `json:"tax_breakdown"`
	Totals         Totals                   `json:"totals"`
	GrossTotal     *decimal.Decimal         `json:"gross_total,omitempty"`
	Currency       string                   `json:"currency"`
	Confidence     float64                  `json:"confidence"`
	Warnings       []string                 `json:"warnings"`
	RawTextSample  string                   `json:"raw_text_sample"`
	Source         string                   `json:"source"`
}

// Warnings raised when a structural fallback produced a value.
const (
	WarnVendorFromHeader    = "vendor_block_from_header"
	WarnRecipientByPostal   = "recipient_split_postal_code"
	WarnRecipientByMidpoint = "recipient_split_midpoint"
	WarnGrossFromLastToken  = "gross_from_last_token"
	WarnIBANChecksum        = "iban_checksum_invalid"
	WarnIBANUnlabeled       = "iban_unlabeled"
	WarnBICUnlabeled        = "bic_unlabeled"
)

// Status is ok when the top level total was matched.
func (p Prediction) Status() constants.PredictionStatus {
	if p.Confidence >= 0.6 {
		return constants.PredictionOK
	}
	return constants.PredictionPartial
}

// HasWarning reports whether w was raised during extraction.
func (p Prediction) HasWarning(w string) bool {
	for _, x := range p.Warnings {
		if x == w {
			return true
		}
	}
	return false
}
